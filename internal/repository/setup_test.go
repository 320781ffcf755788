package repository

import (
	"context"
	"testing"
	"time"

	"quickcart/internal/database"
	"quickcart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application
// schema applied and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedProducts(t *testing.T, pool *pgxpool.Pool, products []database.SeedProduct) {
	require.NoError(t, database.Seed(context.Background(), pool, products, zerolog.Nop()))
}

func newTestOrder(userID string, items ...model.CartItem) *model.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &model.Order{
		ID:        uuid.New(),
		UserID:    userID,
		CartItems: items,
		AddressInfo: model.AddressInfo{
			Address: "12 MG Road",
			City:    "Pune",
			Pincode: "411001",
			Phone:   "9999999999",
		},
		OrderStatus:     model.OrderPending,
		PaymentMethod:   model.PaymentMethodPhonePe,
		PaymentStatus:   model.PaymentPending,
		TotalAmount:     total,
		OrderDate:       now,
		OrderUpdateDate: now,
	}
}
