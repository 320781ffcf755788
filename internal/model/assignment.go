package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the courier-side status of an assigned order.
type DeliveryStatus string

const (
	DeliveryAssigned  DeliveryStatus = "Assigned"
	DeliveryPickedUp  DeliveryStatus = "Picked Up"
	DeliveryInTransit DeliveryStatus = "In Transit"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryCancelled DeliveryStatus = "Cancelled"
)

// Valid reports whether s is one of the five delivery statuses.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered, DeliveryCancelled:
		return true
	}
	return false
}

// AssignedOrder groups every order handed to one courier. There is at most
// one per courier.
type AssignedOrder struct {
	ID        uuid.UUID            `json:"id" db:"id"`
	UserID    string               `json:"userId" db:"user_id"`
	Orders    []AssignedOrderEntry `json:"orders"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time            `json:"updatedAt" db:"updated_at"`
}

// AssignedOrderEntry references an Order; Order is only set when the
// reference has been resolved.
type AssignedOrderEntry struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	OrderID     uuid.UUID      `json:"orderId" db:"order_id"`
	Order       *Order         `json:"order,omitempty"`
	Status      DeliveryStatus `json:"status" db:"status"`
	Routes      []Route        `json:"routes" db:"routes"`
	AssignedAt  time.Time      `json:"assignedAt" db:"assigned_at"`
	DeliveredAt *time.Time     `json:"deliveredAt,omitempty" db:"delivered_at"`
}

// Route is one leg of a delivery as produced by the routing provider.
type Route struct {
	StartLocation json.RawMessage `json:"startLocation,omitempty"`
	EndLocation   json.RawMessage `json:"endLocation,omitempty"`
	Polyline      string          `json:"polyline,omitempty"`
}

// AssignOrderRequest hands orders to a courier.
type AssignOrderRequest struct {
	DeliveryUserID string            `json:"deliveryUserId" binding:"required"`
	Orders         []AssignOrderItem `json:"orders" binding:"required,min=1,dive"`
}

// AssignOrderItem is a single order in an assignment request.
type AssignOrderItem struct {
	OrderID uuid.UUID      `json:"orderId" binding:"required"`
	Status  DeliveryStatus `json:"status,omitempty"`
	Routes  []Route        `json:"routes,omitempty"`
}

// AssignResult is the courier document after assignment plus the order ids
// that were already on it.
type AssignResult struct {
	Assignment *AssignedOrder `json:"assignment"`
	Skipped    []uuid.UUID    `json:"skipped,omitempty"`
}

// UpdateAssignmentStatusRequest is sent by the courier app.
type UpdateAssignmentStatusRequest struct {
	UserID  string         `json:"userId" binding:"required"`
	OrderID uuid.UUID      `json:"orderId" binding:"required"`
	Status  DeliveryStatus `json:"status" binding:"required"`
}

// DeleteAssignmentRequest removes an order from a courier.
type DeleteAssignmentRequest struct {
	UserID  string    `json:"userId" binding:"required"`
	OrderID uuid.UUID `json:"orderId" binding:"required"`
}
