package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/database"
	"quickcart/internal/handler"
	"quickcart/internal/mailer"
	"quickcart/internal/middleware"
	"quickcart/internal/model"
	"quickcart/internal/payment"
	"quickcart/internal/repository"
	"quickcart/internal/router"
	"quickcart/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts PostgreSQL in a container and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{
		MaxConnections: 10,
		MinConnections: 2,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts resets the catalogue to the demo products.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if err := database.Seed(context.Background(), pool, database.DefaultSeedProducts(), zerolog.Nop()); err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"assigned_order_entries", "assigned_orders", "orders", "carts", "products", "push_tokens", "otps"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// fakeGateway is an online gateway whose answer to Paid is set by the test.
type fakeGateway struct {
	mu   sync.Mutex
	paid bool
}

func (g *fakeGateway) Method() string { return model.PaymentMethodPhonePe }

func (g *fakeGateway) Initiate(_ context.Context, order *model.Order) (*payment.Initiation, error) {
	return &payment.Initiation{RedirectURL: "https://pay.example.com/" + order.ID.String()}, nil
}

func (g *fakeGateway) Paid(context.Context, *model.Order) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paid, nil
}

func (g *fakeGateway) setPaid(paid bool) {
	g.mu.Lock()
	g.paid = paid
	g.mu.Unlock()
}

// outbox records mail and push traffic.
type outbox struct {
	mu     sync.Mutex
	mails  []mailer.Message
	pushes []model.PushMessage
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	o.mails = append(o.mails, msg)
	o.mu.Unlock()
	return nil
}

func (o *outbox) Publish(_ context.Context, messages []model.PushMessage) ([]model.PushTicket, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pushes = append(o.pushes, messages...)

	tickets := make([]model.PushTicket, len(messages))
	for i := range tickets {
		tickets[i] = model.PushTicket{Status: "ok"}
	}
	return tickets, nil
}

func (o *outbox) lastMail() (mailer.Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.mails) == 0 {
		return mailer.Message{}, false
	}
	return o.mails[len(o.mails)-1], true
}

// testServer is the full HTTP stack over a real database with fake
// gateway, mail and push providers.
type testServer struct {
	http.Handler
	gateway *fakeGateway
	outbox  *outbox
}

func setupTestServer(t *testing.T, testDB *TestDB) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	assignRepo := repository.NewAssignmentRepository(testDB.Pool, logger)
	tokenRepo := repository.NewTokenRepository(testDB.Pool, logger)
	otpRepo := repository.NewOTPRepository(testDB.Pool, logger)

	renderer, err := mailer.NewRenderer(ctx, mailer.NewEmbeddedLoader(), mailer.TemplateOTP, mailer.TemplateOrderConfirmation)
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	gateway := &fakeGateway{}
	box := &outbox{}
	paymentCfg := config.PaymentConfig{AdminUserID: "admin"}

	notificationService := service.NewNotificationService(tokenRepo, box, logger)
	t.Cleanup(notificationService.Close)

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, payment.NewRegistry(gateway),
		notificationService, box, renderer, paymentCfg, logger)
	otpService := service.NewOTPService(otpRepo, box, renderer,
		config.OTPConfig{Store: config.OTPStorePostgres, TTL: 5 * time.Minute, EnforceExpiry: true}, logger)
	assignmentService := service.NewAssignmentService(assignRepo, orderRepo, logger)

	engine := router.New(router.Handlers{
		Product:      handler.NewProductHandler(productService, logger),
		Order:        handler.NewOrderHandler(orderService, paymentCfg, logger),
		OTP:          handler.NewOTPHandler(otpService, logger),
		Notification: handler.NewNotificationHandler(notificationService, logger),
		Assignment:   handler.NewAssignmentHandler(assignmentService, logger),
	}, router.Options{
		APIKey:      testAPIKey,
		RateLimiter: middleware.NewRateLimiter(100, 100, time.Minute),
		Logger:      logger,
	})

	return &testServer{Handler: engine, gateway: gateway, outbox: box}
}
