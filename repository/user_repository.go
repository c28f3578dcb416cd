package repository

import (
	"context"
	"errors"
	"fmt"

	"cardswap/database"
	"cardswap/domain/entities"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface and the trade-lock registry
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository on the pool
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepository creates a user repository bound to a transaction
func newUserRepository(q Queryable) *UserRepository {
	return &UserRepository{q: q}
}

// GetByDiscordID retrieves a user by their Discord ID
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error) {
	query := `
		SELECT discord_id, username, in_trade, created_at, updated_at
		FROM users
		WHERE discord_id = $1
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&user.DiscordID,
		&user.Username,
		&user.InTrade,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord ID %d: %w", discordID, err)
	}

	return &user, nil
}

// Upsert creates the user or refreshes their username
func (r *UserRepository) Upsert(ctx context.Context, discordID int64, username string) (*entities.User, error) {
	query := `
		INSERT INTO users (discord_id, username)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = NOW()
		RETURNING discord_id, username, in_trade, created_at, updated_at
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, discordID, username).Scan(
		&user.DiscordID,
		&user.Username,
		&user.InTrade,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %d: %w", discordID, err)
	}

	return &user, nil
}

// TryAcquireTradeLock sets the in-trade flag if it is clear.
// It returns false when the user is already trading or has no record.
func (r *UserRepository) TryAcquireTradeLock(ctx context.Context, discordID int64) (bool, error) {
	query := `
		UPDATE users
		SET in_trade = TRUE, updated_at = NOW()
		WHERE discord_id = $1 AND in_trade = FALSE
	`

	result, err := r.q.Exec(ctx, query, discordID)
	if err != nil {
		return false, fmt.Errorf("failed to acquire trade lock for %d: %w", discordID, err)
	}

	return result.RowsAffected() == 1, nil
}

// ReleaseTradeLock clears the in-trade flag. Releasing a clear flag is a no-op.
func (r *UserRepository) ReleaseTradeLock(ctx context.Context, discordID int64) error {
	query := `
		UPDATE users
		SET in_trade = FALSE, updated_at = NOW()
		WHERE discord_id = $1 AND in_trade = TRUE
	`

	if _, err := r.q.Exec(ctx, query, discordID); err != nil {
		return fmt.Errorf("failed to release trade lock for %d: %w", discordID, err)
	}

	return nil
}
