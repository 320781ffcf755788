package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/database"
	"quickcart/internal/handler"
	"quickcart/internal/mailer"
	"quickcart/internal/middleware"
	"quickcart/internal/payment"
	"quickcart/internal/push"
	"quickcart/internal/repository"
	"quickcart/internal/router"
	"quickcart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second
	// rateLimitIdle is how long a client's limiter is kept after its last request.
	rateLimitIdle = 10 * time.Minute
)

func serveCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), a.cfg, a.logger, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func run(parent context.Context, cfg *config.Config, logger zerolog.Logger, migrate bool) error {
	logger.Info().Str("version", version).Msg("starting quickcart API server")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	assignRepo := repository.NewAssignmentRepository(pool, logger)
	tokenRepo := repository.NewTokenRepository(pool, logger)

	otpStore := repository.NewOTPRepository(pool, logger)
	if cfg.OTP.Store == config.OTPStoreRedis {
		client, err := database.NewRedisClient(ctx, cfg.Redis.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer client.Close()
		otpStore = repository.NewRedisOTPRepository(client, cfg.OTP.EnforceExpiry, logger)
	}

	// Mail
	renderer, err := mailer.NewRenderer(ctx, templateLoader(ctx, cfg, logger),
		mailer.TemplateOTP, mailer.TemplateOrderConfirmation)
	if err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}
	mail, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Payment gateways
	var gateways []payment.Gateway
	if cfg.Payment.PhonePe.Enabled {
		gateways = append(gateways, payment.NewPhonePe(cfg.Payment.PhonePe, nil, logger))
	}
	if cfg.Payment.Razorpay.Enabled {
		gateways = append(gateways, payment.NewRazorpay(cfg.Payment.Razorpay, logger))
	}
	registry := payment.NewRegistry(gateways...)
	logger.Info().Strs("payment_methods", registry.Methods()).Msg("payment gateways registered")

	// Services
	productService := service.NewProductService(productRepo, logger)
	notificationService := service.NewNotificationService(tokenRepo, push.NewClient(cfg.Push, nil, logger), logger)
	defer notificationService.Close()
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, registry,
		notificationService, mail, renderer, cfg.Payment, logger)
	otpService := service.NewOTPService(otpStore, mail, renderer, cfg.OTP, logger)
	assignmentService := service.NewAssignmentService(assignRepo, orderRepo, logger)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := router.New(router.Handlers{
		Product:      handler.NewProductHandler(productService, logger),
		Order:        handler.NewOrderHandler(orderService, cfg.Payment, logger),
		OTP:          handler.NewOTPHandler(otpService, logger),
		Notification: handler.NewNotificationHandler(notificationService, logger),
		Assignment:   handler.NewAssignmentHandler(assignmentService, logger),
	}, router.Options{
		APIKey:      cfg.Auth.APIKey,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, rateLimitIdle),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// templateLoader tries S3, then the template directory, then the embedded
// defaults. An S3 loader that cannot be created is skipped with a warning.
func templateLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) mailer.Loader {
	var loaders []mailer.Loader

	if cfg.S3.Enabled {
		s3Loader, err := mailer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 template loader, falling back to local templates")
		} else {
			loaders = append(loaders, s3Loader)
		}
	}

	if cfg.Templates.Dir != "" {
		loaders = append(loaders, mailer.NewFileLoader(cfg.Templates.Dir, logger))
	}

	loaders = append(loaders, mailer.NewEmbeddedLoader())
	return mailer.NewChainLoader(logger, loaders...)
}
