package service

import (
	"context"

	"quickcart/internal/model"

	"github.com/google/uuid"
)

// ProductService serves catalogue reads and stock checks.
type ProductService interface {
	// List returns a page of the catalogue, optionally only products in stock.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	GetByID(ctx context.Context, id string) (*model.Product, error)

	// CheckAvailability reports, per product, whether current stock covers
	// the requested cart lines.
	CheckAvailability(ctx context.Context, items []model.CartItem) (*model.Availability, error)
}

// OrderService drives checkout and payment capture.
type OrderService interface {
	// Create persists a new order and starts payment for it.
	Create(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error)

	// Capture asks the gateway about an order's payment and, when paid,
	// confirms the order, takes the stock and clears the cart atomically.
	Capture(ctx context.Context, id uuid.UUID) (*model.CaptureResult, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// GetByID returns one order.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// AddReview attaches a review to an order.
	AddReview(ctx context.Context, req *model.AddReviewRequest) (*model.Order, error)
}

// OTPService issues and checks email one-time passwords.
type OTPService interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// NotificationService manages device tokens and push delivery.
type NotificationService interface {
	StoreToken(ctx context.Context, req *model.StoreTokenRequest) error

	// Broadcast pushes to every stored token, now or at req.TriggerTime.
	Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error)

	SendToUser(ctx context.Context, userID, title, body string) ([]model.PushTicket, error)

	// Close cancels broadcasts that have not fired yet.
	Close()
}

// AssignmentService manages the orders handed to couriers.
type AssignmentService interface {
	Assign(ctx context.Context, req *model.AssignOrderRequest) (*model.AssignResult, error)
	UpdateStatus(ctx context.Context, req *model.UpdateAssignmentStatusRequest) (*model.AssignedOrder, error)
	GetAssigned(ctx context.Context, userID string) (*model.AssignedOrder, error)
	Remove(ctx context.Context, req *model.DeleteAssignmentRequest) (*model.AssignedOrder, error)
}
