package domain

import "context"

// CreditRepository reads and spends a user's platform credits.
type CreditRepository interface {
	Balance(ctx context.Context, userID string) (int, error)
	// Deduct subtracts amount and returns the new balance. It fails with
	// ErrInsufficientCredits when the balance would go negative.
	Deduct(ctx context.Context, userID string, amount int) (int, error)
}

// GenerationRepository persists generation history documents.
type GenerationRepository interface {
	Save(ctx context.Context, g *Generation) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error)
}
