package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickcart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// assignmentRepository stores courier documents as a header row plus one
// row per assigned order.
type assignmentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAssignmentRepository creates a new PostgreSQL-backed assignment repository.
func NewAssignmentRepository(pool *pgxpool.Pool, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "assignment").Logger(),
	}
}

func (r *assignmentRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *assignmentRepository) FindOrCreate(ctx context.Context, tx pgx.Tx, userID string, at time.Time) (uuid.UUID, error) {
	query := `
		INSERT INTO assigned_orders (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, uuid.New(), userID, at).Scan(&id); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to upsert assignment")
		return uuid.Nil, fmt.Errorf("failed to upsert assignment: %w", err)
	}

	return id, nil
}

func (r *assignmentRepository) AddEntries(ctx context.Context, tx pgx.Tx, assignmentID uuid.UUID, entries []model.AssignedOrderEntry) ([]uuid.UUID, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO assigned_order_entries (id, assignment_id, order_id, status, routes, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (assignment_id, order_id) DO NOTHING
		RETURNING order_id
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		routes := e.Routes
		if routes == nil {
			routes = []model.Route{}
		}
		batch.Queue(query, e.ID, assignmentID, e.OrderID, e.Status, routes, e.AssignedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	inserted := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		var orderID uuid.UUID
		err := results.QueryRow().Scan(&orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("assignment_id", assignmentID.String()).
				Str("order_id", entries[i].OrderID.String()).
				Msg("failed to insert assigned order")
			return nil, fmt.Errorf("failed to insert assigned order: %w", err)
		}
		inserted = append(inserted, orderID)
	}

	r.logger.Debug().
		Str("assignment_id", assignmentID.String()).
		Int("requested", len(entries)).
		Int("inserted", len(inserted)).
		Msg("assigned orders stored")

	return inserted, nil
}

func (r *assignmentRepository) GetByUser(ctx context.Context, userID string, populate bool) (*model.AssignedOrder, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM assigned_orders
		WHERE user_id = $1
	`

	var a model.AssignedOrder
	err := r.pool.QueryRow(ctx, query, userID).Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", userID).Msg("assignment not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query assignment")
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}

	if populate {
		a.Orders, err = r.populatedEntries(ctx, a.ID)
	} else {
		a.Orders, err = r.entries(ctx, a.ID)
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *assignmentRepository) entries(ctx context.Context, assignmentID uuid.UUID) ([]model.AssignedOrderEntry, error) {
	query := `
		SELECT id, order_id, status, routes, assigned_at, delivered_at
		FROM assigned_order_entries
		WHERE assignment_id = $1
		ORDER BY assigned_at, id
	`

	rows, err := r.pool.Query(ctx, query, assignmentID)
	if err != nil {
		r.logger.Error().Err(err).Str("assignment_id", assignmentID.String()).Msg("failed to query assigned orders")
		return nil, fmt.Errorf("failed to query assigned orders: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AssignedOrderEntry, 0)
	for rows.Next() {
		var e model.AssignedOrderEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Routes, &e.AssignedAt, &e.DeliveredAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan assigned order row")
			return nil, fmt.Errorf("failed to scan assigned order: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assigned orders: %w", err)
	}

	return entries, nil
}

func (r *assignmentRepository) populatedEntries(ctx context.Context, assignmentID uuid.UUID) ([]model.AssignedOrderEntry, error) {
	query := `
		SELECT e.id, e.order_id, e.status, e.routes, e.assigned_at, e.delivered_at,
			o.id, o.user_id, o.cart_id, o.cart_items, o.address_info, o.order_status,
			o.payment_method, o.payment_status, o.total_amount, o.payment_id,
			o.gateway_ref, o.order_otp, o.order_date, o.order_update_date, o.review
		FROM assigned_order_entries e
		JOIN orders o ON o.id = e.order_id
		WHERE e.assignment_id = $1
		ORDER BY e.assigned_at, e.id
	`

	rows, err := r.pool.Query(ctx, query, assignmentID)
	if err != nil {
		r.logger.Error().Err(err).Str("assignment_id", assignmentID.String()).Msg("failed to query assigned orders")
		return nil, fmt.Errorf("failed to query assigned orders: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AssignedOrderEntry, 0)
	for rows.Next() {
		var (
			e model.AssignedOrderEntry
			o model.Order
		)
		err := rows.Scan(
			&e.ID, &e.OrderID, &e.Status, &e.Routes, &e.AssignedAt, &e.DeliveredAt,
			&o.ID, &o.UserID, &o.CartID, &o.CartItems, &o.AddressInfo, &o.OrderStatus,
			&o.PaymentMethod, &o.PaymentStatus, &o.TotalAmount, &o.PaymentID,
			&o.GatewayRef, &o.OrderOTP, &o.OrderDate, &o.OrderUpdateDate, &o.Review,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan assigned order row")
			return nil, fmt.Errorf("failed to scan assigned order: %w", err)
		}
		e.Order = &o
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assigned orders: %w", err)
	}

	return entries, nil
}

func (r *assignmentRepository) UpdateEntryStatus(ctx context.Context, assignmentID, orderID uuid.UUID, status model.DeliveryStatus, deliveredAt *time.Time, at time.Time) (bool, error) {
	query := `
		WITH updated AS (
			UPDATE assigned_order_entries
			SET status = $3, delivered_at = COALESCE($4, delivered_at)
			WHERE assignment_id = $1 AND order_id = $2
			RETURNING assignment_id
		)
		UPDATE assigned_orders
		SET updated_at = $5
		WHERE id IN (SELECT assignment_id FROM updated)
	`

	tag, err := r.pool.Exec(ctx, query, assignmentID, orderID, status, deliveredAt, at)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("assignment_id", assignmentID.String()).
			Str("order_id", orderID.String()).
			Msg("failed to update assigned order status")
		return false, fmt.Errorf("failed to update assigned order status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *assignmentRepository) RemoveEntries(ctx context.Context, assignmentID, orderID uuid.UUID, at time.Time) (int64, error) {
	query := `
		WITH removed AS (
			DELETE FROM assigned_order_entries
			WHERE assignment_id = $1 AND order_id = $2
			RETURNING id
		), touched AS (
			UPDATE assigned_orders
			SET updated_at = $3
			WHERE id = $1 AND EXISTS (SELECT 1 FROM removed)
		)
		SELECT COUNT(*) FROM removed
	`

	var removed int64
	if err := r.pool.QueryRow(ctx, query, assignmentID, orderID, at).Scan(&removed); err != nil {
		r.logger.Error().
			Err(err).
			Str("assignment_id", assignmentID.String()).
			Str("order_id", orderID.String()).
			Msg("failed to remove assigned order")
		return 0, fmt.Errorf("failed to remove assigned order: %w", err)
	}

	return removed, nil
}
