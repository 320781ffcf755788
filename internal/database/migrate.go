package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		logger.Error().Err(err).Msg("failed to apply schema")
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Msg("schema applied")
	return nil
}

// SeedProduct is a catalogue row inserted by Seed.
type SeedProduct struct {
	ID    string
	Title string
	Price decimal.Decimal
	Stock int
}

// DefaultSeedProducts is the demo catalogue.
func DefaultSeedProducts() []SeedProduct {
	return []SeedProduct{
		{ID: "P001", Title: "Basmati Rice 5kg", Price: decimal.RequireFromString("649.00"), Stock: 40},
		{ID: "P002", Title: "Cold Pressed Groundnut Oil 1L", Price: decimal.RequireFromString("289.50"), Stock: 60},
		{ID: "P003", Title: "Organic Toor Dal 1kg", Price: decimal.RequireFromString("189.00"), Stock: 75},
		{ID: "P004", Title: "Masala Chai 250g", Price: decimal.RequireFromString("149.00"), Stock: 120},
		{ID: "P005", Title: "Alphonso Mango Box", Price: decimal.RequireFromString("1199.00"), Stock: 15},
	}
}

// Seed upserts products, resetting their stock.
func Seed(ctx context.Context, pool *pgxpool.Pool, products []SeedProduct, logger zerolog.Logger) error {
	query := `
		INSERT INTO products (id, title, price, total_stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, price = EXCLUDED.price, total_stock = EXCLUDED.total_stock
	`

	for _, p := range products {
		if _, err := pool.Exec(ctx, query, p.ID, p.Title, p.Price, p.Stock); err != nil {
			logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to seed product")
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}

	logger.Info().Int("count", len(products)).Msg("products seeded")
	return nil
}
