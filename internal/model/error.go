package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeNoOrders          = "NO_ORDERS"
	ErrCodeAssignmentMissing = "ASSIGNMENT_NOT_FOUND"
	ErrCodeAssignedEntry     = "ASSIGNED_ORDER_NOT_FOUND"
	ErrCodeTokenNotFound     = "TOKEN_NOT_FOUND"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidOTP        = "INVALID_OTP"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeUnsupportedMethod = "UNSUPPORTED_PAYMENT_METHOD"
	ErrCodeGateway           = "GATEWAY_ERROR"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
	ErrCodeDelivery          = "DELIVERY_ERROR"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindInsufficientStock
	KindGateway
	KindPersistence
	KindDelivery
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindGateway:
		return "gateway"
	case KindPersistence:
		return "persistence"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// DomainError is a business error carrying a stable code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so sentinel comparisons survive wrapping.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func NewValidationError(message string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, message)
}

func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

func WrapPersistence(message string, err error) *DomainError {
	return &DomainError{Kind: KindPersistence, Code: ErrCodePersistence, Message: message, Err: err}
}

func WrapGateway(message string, err error) *DomainError {
	return &DomainError{Kind: KindGateway, Code: ErrCodeGateway, Message: message, Err: err}
}

func WrapDelivery(message string, err error) *DomainError {
	return &DomainError{Kind: KindDelivery, Code: ErrCodeDelivery, Message: message, Err: err}
}

// KindOf returns the kind of the first DomainError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Common domain errors
var (
	ErrOrderNotFound      = NewNotFoundError(ErrCodeOrderNotFound, "Order not found")
	ErrNoOrders           = NewNotFoundError(ErrCodeNoOrders, "No orders found")
	ErrProductNotFound    = NewNotFoundError(ErrCodeProductNotFound, "Product not found")
	ErrAssignmentNotFound = NewNotFoundError(ErrCodeAssignmentMissing, "No assigned orders found for this user")
	ErrAssignedEntryGone  = NewNotFoundError(ErrCodeAssignedEntry, "Order not found in assigned orders")
	ErrTokenNotFound      = NewNotFoundError(ErrCodeTokenNotFound, "No push token stored for user")
	ErrInvalidStatus      = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Invalid status value")
	ErrInvalidOTP         = NewDomainError(KindValidation, ErrCodeInvalidOTP, "Invalid or expired OTP")
	ErrUnsupportedMethod  = NewDomainError(KindValidation, ErrCodeUnsupportedMethod, "Unsupported payment method")
	ErrInsufficientStock  = NewDomainError(KindInsufficientStock, ErrCodeInsufficientStock, "Not enough stock")
)
