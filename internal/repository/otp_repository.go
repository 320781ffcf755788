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

type otpRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOTPRepository creates a PostgreSQL-backed OTP store.
func NewOTPRepository(pool *pgxpool.Pool, logger zerolog.Logger) OTPRepository {
	return &otpRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "otp").Str("store", "postgres").Logger(),
	}
}

func (r *otpRepository) Upsert(ctx context.Context, otp model.OTP) error {
	query := `
		INSERT INTO otps (email, otp_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET otp_hash = EXCLUDED.otp_hash, expires_at = EXCLUDED.expires_at
	`

	if _, err := r.pool.Exec(ctx, query, otp.Email, otp.Hash, otp.ExpiresAt); err != nil {
		r.logger.Error().Err(err).Msg("failed to store otp")
		return fmt.Errorf("failed to store otp: %w", err)
	}

	return nil
}

func (r *otpRepository) Get(ctx context.Context, email string) (*model.OTP, error) {
	query := `SELECT email, otp_hash, expires_at FROM otps WHERE email = $1`

	var o model.OTP
	err := r.pool.QueryRow(ctx, query, email).Scan(&o.Email, &o.Hash, &o.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query otp")
		return nil, fmt.Errorf("failed to query otp: %w", err)
	}

	return &o, nil
}

func (r *otpRepository) Consume(ctx context.Context, email, hash string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE email = $1 AND otp_hash = $2`, email, hash)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to consume otp")
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
