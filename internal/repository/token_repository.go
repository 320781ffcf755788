package repository

import (
	"context"
	"errors"
	"fmt"

	"quickcart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type tokenRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTokenRepository creates a new PostgreSQL-backed push token repository.
func NewTokenRepository(pool *pgxpool.Pool, logger zerolog.Logger) TokenRepository {
	return &tokenRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "push_token").Logger(),
	}
}

func (r *tokenRepository) Upsert(ctx context.Context, token model.PushToken) error {
	query := `
		INSERT INTO push_tokens (user_id, push_token, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET push_token = EXCLUDED.push_token, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, token.UserID, token.PushToken, token.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("user_id", token.UserID).Msg("failed to store push token")
		return fmt.Errorf("failed to store push token: %w", err)
	}

	return nil
}

func (r *tokenRepository) GetByUser(ctx context.Context, userID string) (*model.PushToken, error) {
	query := `SELECT user_id, push_token, updated_at FROM push_tokens WHERE user_id = $1`

	var t model.PushToken
	err := r.pool.QueryRow(ctx, query, userID).Scan(&t.UserID, &t.PushToken, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query push token")
		return nil, fmt.Errorf("failed to query push token: %w", err)
	}

	return &t, nil
}

func (r *tokenRepository) List(ctx context.Context) ([]model.PushToken, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, push_token, updated_at FROM push_tokens ORDER BY user_id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query push tokens")
		return nil, fmt.Errorf("failed to query push tokens: %w", err)
	}

	tokens, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PushToken, error) {
		var t model.PushToken
		err := row.Scan(&t.UserID, &t.PushToken, &t.UpdatedAt)
		return t, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan push tokens")
		return nil, fmt.Errorf("failed to scan push tokens: %w", err)
	}

	return tokens, nil
}
