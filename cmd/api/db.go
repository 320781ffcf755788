package main

import (
	"context"
	"fmt"
	"time"

	"quickcart/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const dbCommandTimeout = 2 * time.Minute

func (a *app) withPool(cmd *cobra.Command, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), dbCommandTimeout)
	defer cancel()

	pool, err := database.NewPool(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, pool)
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				return database.Migrate(ctx, pool, a.logger)
			})
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample product catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				if migrate {
					if err := database.Migrate(ctx, pool, a.logger); err != nil {
						return err
					}
				}
				return database.Seed(ctx, pool, database.DefaultSeedProducts(), a.logger)
			})
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before seeding")
	return cmd
}

func pingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				var serverVersion string
				if err := pool.QueryRow(ctx, "SELECT version()").Scan(&serverVersion); err != nil {
					return fmt.Errorf("query failed: %w", err)
				}

				stat := pool.Stat()
				fmt.Fprintf(cmd.OutOrStdout(), "connected: %s\n", serverVersion)
				fmt.Fprintf(cmd.OutOrStdout(), "pool: total=%d idle=%d max=%d\n",
					stat.TotalConns(), stat.IdleConns(), stat.MaxConns())
				return nil
			})
		},
	}
}
