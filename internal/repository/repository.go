package repository

import (
	"context"
	"time"

	"quickcart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List returns a page of products ordered by title.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs returns the products among ids that exist, in no particular
	// order.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// DecrementStock removes qty units within tx. It reports false, without
	// changing anything, when the product is missing or holds fewer than qty.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, qty int) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order.
	Create(ctx context.Context, order *model.Order) error

	// GetByID retrieves an order. It returns nil when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// SetGatewayRef stores the provider-side reference of an order.
	SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error

	// SetReview attaches a review. It returns nil when the order does not exist.
	SetReview(ctx context.Context, id uuid.UUID, review model.Review) (*model.Order, error)

	// ClaimPayment flips a pending order to paid and confirmed within tx. It
	// reports false when the order is not pending, so only one caller ever
	// wins the claim.
	ClaimPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) (bool, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// Delete removes a cart within tx. Deleting a missing cart is not an error.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// AssignmentRepository defines data access for courier assignments.
type AssignmentRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// FindOrCreate returns the id of the courier's assignment document,
	// creating it when absent, and refreshes its updated_at.
	FindOrCreate(ctx context.Context, tx pgx.Tx, userID string, at time.Time) (uuid.UUID, error)

	// AddEntries appends entries, skipping orders already on the document.
	// It returns the order ids that were inserted.
	AddEntries(ctx context.Context, tx pgx.Tx, assignmentID uuid.UUID, entries []model.AssignedOrderEntry) ([]uuid.UUID, error)

	// GetByUser loads a courier's document. With populate set, every entry
	// carries its full Order. It returns nil when the courier has none.
	GetByUser(ctx context.Context, userID string, populate bool) (*model.AssignedOrder, error)

	// UpdateEntryStatus overwrites the status of the courier's entries for
	// orderID. It reports false when no entry matched.
	UpdateEntryStatus(ctx context.Context, assignmentID, orderID uuid.UUID, status model.DeliveryStatus, deliveredAt *time.Time, at time.Time) (bool, error)

	// RemoveEntries deletes every entry for orderID and returns how many went.
	RemoveEntries(ctx context.Context, assignmentID, orderID uuid.UUID, at time.Time) (int64, error)
}

// TokenRepository stores one push token per user.
type TokenRepository interface {
	// Upsert stores token, replacing any previous token of the same user.
	Upsert(ctx context.Context, token model.PushToken) error

	// GetByUser returns nil when the user has no token.
	GetByUser(ctx context.Context, userID string) (*model.PushToken, error)

	// List returns every stored token.
	List(ctx context.Context) ([]model.PushToken, error)
}

// OTPRepository stores at most one active OTP per email.
type OTPRepository interface {
	// Upsert stores otp, replacing any previous code for the same email.
	Upsert(ctx context.Context, otp model.OTP) error

	// Get returns nil when no code is stored for email.
	Get(ctx context.Context, email string) (*model.OTP, error)

	// Consume deletes the code for email only if it still has hash. It
	// reports whether this call removed it.
	Consume(ctx context.Context, email, hash string) (bool, error)
}
