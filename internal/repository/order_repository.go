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

const orderColumns = `
	id, user_id, cart_id, cart_items, address_info, order_status,
	payment_method, payment_status, total_amount, payment_id,
	gateway_ref, order_otp, order_date, order_update_date, review
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, cart_id, cart_items, address_info, order_status,
			payment_method, payment_status, total_amount, payment_id,
			gateway_ref, order_otp, order_date, order_update_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.CartID,
		order.CartItems,
		order.AddressInfo,
		order.OrderStatus,
		order.PaymentMethod,
		order.PaymentStatus,
		order.TotalAmount,
		order.PaymentID,
		order.GatewayRef,
		order.OrderOTP,
		order.OrderDate,
		order.OrderUpdateDate,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("payment_method", order.PaymentMethod).
		Msg("order created successfully")

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	query := `
		UPDATE orders
		SET gateway_ref = $2, order_update_date = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, ref); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store gateway reference")
		return fmt.Errorf("failed to store gateway reference: %w", err)
	}

	return nil
}

func (r *orderRepository) SetReview(ctx context.Context, id uuid.UUID, review model.Review) (*model.Order, error) {
	query := `
		UPDATE orders
		SET review = $2, order_update_date = $3
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, review, review.CreatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store review")
		return nil, fmt.Errorf("failed to store review: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ClaimPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $2, order_status = $3, order_update_date = $4
		WHERE id = $1 AND payment_status = $5
	`

	tag, err := tx.Exec(ctx, query, id, model.PaymentPaid, model.OrderConfirmed, at, model.PaymentPending)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to claim payment")
		return false, fmt.Errorf("failed to claim payment: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// scanOrder reads one row selected with orderColumns.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.CartID,
		&o.CartItems,
		&o.AddressInfo,
		&o.OrderStatus,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.TotalAmount,
		&o.PaymentID,
		&o.GatewayRef,
		&o.OrderOTP,
		&o.OrderDate,
		&o.OrderUpdateDate,
		&o.Review,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
