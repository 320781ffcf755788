package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quickcart/internal/model"

	"github.com/go-redis/redis"
	"github.com/rs/zerolog"
)

const otpKeyPrefix = "otp:"

// consumeScript deletes the key only while it still holds the given hash.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	return 0
end
if cjson.decode(v)['hash'] ~= ARGV[1] then
	return 0
end
return redis.call('DEL', KEYS[1])
`)

type redisOTP struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type redisOTPRepository struct {
	client *redis.Client
	expire bool
	logger zerolog.Logger
}

// NewRedisOTPRepository creates an OTP store on Redis. With expire set, keys
// carry a TTL matching the code's expiry so Redis drops stale codes by
// itself; otherwise a code stays until it is consumed or replaced, as it
// does in the Postgres store.
func NewRedisOTPRepository(client *redis.Client, expire bool, logger zerolog.Logger) OTPRepository {
	return &redisOTPRepository{
		client: client,
		expire: expire,
		logger: logger.With().Str("repository", "otp").Str("store", "redis").Logger(),
	}
}

func otpKey(email string) string {
	return otpKeyPrefix + email
}

func (r *redisOTPRepository) Upsert(ctx context.Context, otp model.OTP) error {
	payload, err := json.Marshal(redisOTP{Hash: otp.Hash, ExpiresAt: otp.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to encode otp: %w", err)
	}

	// Zero means no expiry.
	var ttl time.Duration
	if r.expire {
		ttl = time.Until(otp.ExpiresAt)
		if ttl < time.Second {
			ttl = time.Second
		}
	}

	if err := r.client.WithContext(ctx).Set(otpKey(otp.Email), payload, ttl).Err(); err != nil {
		r.logger.Error().Err(err).Msg("failed to store otp")
		return fmt.Errorf("failed to store otp: %w", err)
	}

	return nil
}

func (r *redisOTPRepository) Get(ctx context.Context, email string) (*model.OTP, error) {
	raw, err := r.client.WithContext(ctx).Get(otpKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query otp")
		return nil, fmt.Errorf("failed to query otp: %w", err)
	}

	var stored redisOTP
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode otp: %w", err)
	}

	return &model.OTP{Email: email, Hash: stored.Hash, ExpiresAt: stored.ExpiresAt}, nil
}

func (r *redisOTPRepository) Consume(ctx context.Context, email, hash string) (bool, error) {
	n, err := consumeScript.Run(r.client.WithContext(ctx), []string{otpKey(email)}, hash).Int64()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to consume otp")
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}

	return n == 1, nil
}
