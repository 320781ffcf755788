package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item in the catalogue.
type Product struct {
	ID         string          `json:"id" db:"id"`
	Title      string          `json:"title" db:"title"`
	Price      decimal.Decimal `json:"price" db:"price"`
	TotalStock int             `json:"totalStock" db:"total_stock"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// ProductFilter selects a page of the catalogue.
type ProductFilter struct {
	Limit  int
	Offset int
	// InStock drops products whose stock has run out.
	InStock bool
}

// StockLine is one product of an availability check. Quantities of repeated
// cart lines for the same product are summed into Requested.
type StockLine struct {
	ProductID string `json:"productId"`
	Title     string `json:"title,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Known     bool   `json:"known"`
}

// Sufficient reports whether current stock covers the line.
func (l StockLine) Sufficient() bool {
	return l.Known && l.Available >= l.Requested
}

// Availability is the outcome of checking cart lines against stock. It is
// advisory: stock is only taken when a payment is captured.
type Availability struct {
	Available bool        `json:"available"`
	Lines     []StockLine `json:"lines"`
}

// AvailabilityRequest asks whether cart lines can currently be served.
type AvailabilityRequest struct {
	Items []CartItem `json:"items" binding:"required,min=1,dive"`
}

// Cart is a user's shopping cart. It is deleted once its order is paid.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	Items     []CartItem `json:"items" db:"items"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
