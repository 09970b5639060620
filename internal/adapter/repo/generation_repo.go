package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"genstudio/internal/domain"
	"genstudio/internal/infra"
	"genstudio/internal/sqlinline"
)

const maxListLimit = 100

// GenerationRepositoryPG stores generation history as JSONB documents.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql, now: time.Now}
}

// Save assigns an id and timestamp when missing and inserts the document.
func (r *GenerationRepositoryPG) Save(ctx context.Context, g *domain.Generation) error {
	if g == nil {
		return fmt.Errorf("%w: generation is nil", domain.ErrInvalidInput)
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = r.now().UTC()
	}
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("generations: encode: %w", err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration, g.ID, g.UserID, string(g.Kind), g.Model, doc, g.CreatedAt); err != nil {
		return fmt.Errorf("generations: insert: %w", err)
	}
	return nil
}

func (r *GenerationRepositoryPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Generation, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListGenerationsByUser, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("generations: list: %w", err)
	}
	defer rows.Close()

	var out []domain.Generation
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("generations: scan: %w", err)
		}
		var g domain.Generation
		if err := json.Unmarshal(doc, &g); err != nil {
			return nil, fmt.Errorf("generations: decode: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("generations: list: %w", err)
	}
	return out, nil
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
