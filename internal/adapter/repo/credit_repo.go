package repo

import (
	"context"
	"fmt"
	"strings"

	"genstudio/internal/domain"
	"genstudio/internal/infra"
	"genstudio/internal/sqlinline"
)

// CreditRepositoryPG implements domain.CreditRepository on the user_credits
// ledger.
type CreditRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewCreditRepository(sql infra.SQLExecutor) *CreditRepositoryPG {
	return &CreditRepositoryPG{sql: sql}
}

func (r *CreditRepositoryPG) Balance(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrUnauthorized
	}
	var balance int
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectCreditBalance, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("credits: balance: %w", err)
	}
	return balance, nil
}

// Deduct spends amount in a single conditional update so concurrent
// generations cannot overdraw the balance.
func (r *CreditRepositoryPG) Deduct(ctx context.Context, userID string, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: negative deduction %d", domain.ErrInvalidInput, amount)
	}
	if amount == 0 {
		return r.Balance(ctx, userID)
	}
	var balance int
	err := r.sql.QueryRow(ctx, sqlinline.QDeductCredits, userID, amount).Scan(&balance)
	if infra.IsNoRows(err) {
		return 0, fmt.Errorf("%w: cannot deduct %d", domain.ErrInsufficientCredits, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("credits: deduct: %w", err)
	}
	return balance, nil
}

// Grant adds amount (or removes it when negative, clamped at zero) and
// returns the new balance.
func (r *CreditRepositoryPG) Grant(ctx context.Context, userID string, amount int) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	var balance int
	if err := r.sql.QueryRow(ctx, sqlinline.QGrantCredits, userID, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("credits: grant: %w", err)
	}
	return balance, nil
}

var _ domain.CreditRepository = (*CreditRepositoryPG)(nil)
