package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/mailer"
	"quickcart/internal/model"
	"quickcart/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const otpDigits = 6

type otpService struct {
	store         repository.OTPRepository
	mailer        mailer.Mailer
	renderer      *mailer.Renderer
	ttl           time.Duration
	enforceExpiry bool
	now           func() time.Time
	logger        zerolog.Logger
}

// NewOTPService creates the OTP workflow. Codes are stored as bcrypt hashes
// and removed on first successful verification.
func NewOTPService(
	store repository.OTPRepository,
	m mailer.Mailer,
	renderer *mailer.Renderer,
	cfg config.OTPConfig,
	logger zerolog.Logger,
) OTPService {
	return &otpService{
		store:         store,
		mailer:        m,
		renderer:      renderer,
		ttl:           cfg.TTL,
		enforceExpiry: cfg.EnforceExpiry,
		now:           time.Now,
		logger:        logger.With().Str("service", "otp").Logger(),
	}
}

func (s *otpService) Send(ctx context.Context, email string) error {
	email = normaliseEmail(email)
	if email == "" {
		return model.NewValidationError("Email is required")
	}

	code, err := randomCode(otpDigits)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash otp")
		return err
	}

	otp := model.OTP{
		Email:     email,
		Hash:      string(hash),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Upsert(ctx, otp); err != nil {
		return model.WrapPersistence("Failed to store OTP", err)
	}

	msg, err := s.renderer.Render(mailer.TemplateOTP, email, mailer.OTPData{
		Code:    code,
		Minutes: int(s.ttl.Minutes()),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render otp mail")
		return model.WrapDelivery("Failed to send OTP", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return model.WrapDelivery("Failed to send OTP", err)
	}

	s.logger.Info().Time("expires_at", otp.ExpiresAt).Msg("otp sent")
	return nil
}

// Verify succeeds at most once per issued code.
func (s *otpService) Verify(ctx context.Context, email, code string) error {
	email = normaliseEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return model.NewValidationError("Email and OTP are required")
	}

	otp, err := s.store.Get(ctx, email)
	if err != nil {
		return model.WrapPersistence("Failed to verify OTP", err)
	}
	if otp == nil {
		return model.ErrInvalidOTP
	}

	if s.enforceExpiry && s.now().After(otp.ExpiresAt) {
		s.logger.Debug().Time("expired_at", otp.ExpiresAt).Msg("otp expired")
		return model.ErrInvalidOTP
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.Hash), []byte(code)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.ErrInvalidOTP
		}
		return model.WrapPersistence("Failed to verify OTP", err)
	}

	consumed, err := s.store.Consume(ctx, email, otp.Hash)
	if err != nil {
		return model.WrapPersistence("Failed to verify OTP", err)
	}
	if !consumed {
		// Raced with another verify or a resend.
		return model.ErrInvalidOTP
	}

	s.logger.Info().Msg("otp verified")
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
