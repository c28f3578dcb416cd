package repository

import (
	"context"
	"errors"
	"fmt"

	"cardswap/database"
	"cardswap/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ExpansionRepository implements the ExpansionRepository interface
type ExpansionRepository struct {
	q Queryable
}

// NewExpansionRepository creates a new expansion repository on the pool
func NewExpansionRepository(db *database.DB) *ExpansionRepository {
	return &ExpansionRepository{q: db.Pool}
}

func newExpansionRepository(q Queryable) *ExpansionRepository {
	return &ExpansionRepository{q: q}
}

// Upsert registers the expansion or updates its card total
func (r *ExpansionRepository) Upsert(ctx context.Context, expansion *entities.Expansion) error {
	query := `
		INSERT INTO expansions (name, total_cards)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET total_cards = EXCLUDED.total_cards
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, expansion.Name, expansion.TotalCards).Scan(&expansion.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert expansion %s: %w", expansion.Name, err)
	}
	return nil
}

// GetByName looks an expansion up case-insensitively
func (r *ExpansionRepository) GetByName(ctx context.Context, name string) (*entities.Expansion, error) {
	query := `
		SELECT name, total_cards, created_at
		FROM expansions
		WHERE LOWER(name) = LOWER($1)
	`

	var expansion entities.Expansion
	err := r.q.QueryRow(ctx, query, name).Scan(&expansion.Name, &expansion.TotalCards, &expansion.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expansion %s: %w", name, err)
	}
	return &expansion, nil
}

// List returns all expansions ordered by name
func (r *ExpansionRepository) List(ctx context.Context) ([]*entities.Expansion, error) {
	query := `
		SELECT name, total_cards, created_at
		FROM expansions
		ORDER BY name
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expansions: %w", err)
	}
	defer rows.Close()

	var expansions []*entities.Expansion
	for rows.Next() {
		var expansion entities.Expansion
		if err := rows.Scan(&expansion.Name, &expansion.TotalCards, &expansion.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expansion: %w", err)
		}
		expansions = append(expansions, &expansion)
	}

	return expansions, rows.Err()
}
