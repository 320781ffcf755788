package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus of an order. Only pending and paid are ever persisted.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
)

// Payment methods accepted at checkout. Gateway-backed methods are resolved
// through the payment registry; cod never reaches a gateway.
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodPhonePe  = "phonepe"
	PaymentMethodRazorpay = "razorpay"
)

// Order represents a customer order. CartItems is a snapshot taken at
// checkout and is never re-read from the cart or product catalogue.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          string          `json:"userId" db:"user_id"`
	CartID          *uuid.UUID      `json:"cartId,omitempty" db:"cart_id"`
	CartItems       []CartItem      `json:"cartItems" db:"cart_items"`
	AddressInfo     AddressInfo     `json:"addressInfo" db:"address_info"`
	OrderStatus     OrderStatus     `json:"orderStatus" db:"order_status"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	PaymentID       string          `json:"paymentId" db:"payment_id"`
	GatewayRef      string          `json:"gatewayRef,omitempty" db:"gateway_ref"`
	OrderOTP        string          `json:"orderOtp,omitempty" db:"order_otp"`
	OrderDate       time.Time       `json:"orderDate" db:"order_date"`
	OrderUpdateDate time.Time       `json:"orderUpdateDate" db:"order_update_date"`
	Review          *Review         `json:"review,omitempty" db:"review"`
}

// CartItem is a line of a cart and of an order snapshot.
type CartItem struct {
	ProductID string          `json:"productId" binding:"required"`
	Title     string          `json:"title"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
}

// AddressInfo is the delivery address captured at checkout.
type AddressInfo struct {
	AddressID string `json:"addressId,omitempty"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	Pincode   string `json:"pincode" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Notes     string `json:"notes,omitempty"`
}

// Review is attached to an order after delivery.
type Review struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	UserID        string          `json:"userId" binding:"required"`
	CartID        *uuid.UUID      `json:"cartId"`
	CartItems     []CartItem      `json:"cartItems" binding:"required,min=1,dive"`
	AddressInfo   AddressInfo     `json:"addressInfo"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required"`
	// Email receives the confirmation for cash-on-delivery orders.
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateOrderResponse is returned from checkout. Exactly one of ApprovalURL
// (gateway redirect), GatewayRef (client-side checkout) or OrderOTP (cod)
// is populated besides OrderID.
type CreateOrderResponse struct {
	OrderID     uuid.UUID `json:"orderId"`
	ApprovalURL string    `json:"approvalURL,omitempty"`
	GatewayRef  string    `json:"gatewayRef,omitempty"`
	OrderOTP    string    `json:"orderOtp,omitempty"`
}

// CaptureResult reports the outcome of a payment capture.
type CaptureResult struct {
	OrderID     uuid.UUID `json:"orderId"`
	Paid        bool      `json:"paid"`
	AlreadyPaid bool      `json:"alreadyPaid,omitempty"`
}

// AddReviewRequest attaches a review to an order.
type AddReviewRequest struct {
	OrderID uuid.UUID `json:"orderId" binding:"required"`
	Rating  int       `json:"rating" binding:"required,min=1,max=5"`
	Comment string    `json:"comment" binding:"max=2000"`
}
