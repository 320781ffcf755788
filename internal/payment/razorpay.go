package payment

import (
	"context"
	"fmt"

	"quickcart/internal/config"
	"quickcart/internal/model"

	"github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog"
)

// razorpayOrders is the subset of the Razorpay orders resource in use.
type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay is a client-side checkout gateway: Initiate creates a Razorpay
// order whose id the storefront hands to the Razorpay widget.
type Razorpay struct {
	orders   razorpayOrders
	currency string
	logger   zerolog.Logger
}

// NewRazorpay creates a Razorpay gateway from API credentials.
func NewRazorpay(cfg config.RazorpayConfig, logger zerolog.Logger) *Razorpay {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return newRazorpay(client.Order, cfg.Currency, logger)
}

func newRazorpay(orders razorpayOrders, currency string, logger zerolog.Logger) *Razorpay {
	if currency == "" {
		currency = "INR"
	}
	return &Razorpay{
		orders:   orders,
		currency: currency,
		logger:   logger.With().Str("component", "razorpay").Logger(),
	}
}

func (r *Razorpay) Method() string {
	return model.PaymentMethodRazorpay
}

func (r *Razorpay) Initiate(_ context.Context, order *model.Order) (*Initiation, error) {
	data := map[string]interface{}{
		"amount":   MinorUnits(order.TotalAmount),
		"currency": r.currency,
		"receipt":  order.ID.String(),
		"notes": map[string]interface{}{
			"userId": order.UserID,
		},
	}

	created, err := r.orders.Create(data, nil)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create razorpay order")
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	id, _ := created["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response carried no id")
	}

	r.logger.Info().
		Str("order_id", order.ID.String()).
		Str("razorpay_order_id", id).
		Msg("payment initiated")

	return &Initiation{Reference: id}, nil
}

// Paid fetches the Razorpay order stored as the gateway reference.
func (r *Razorpay) Paid(_ context.Context, order *model.Order) (bool, error) {
	if order.GatewayRef == "" {
		return false, fmt.Errorf("order %s has no razorpay reference", order.ID)
	}

	fetched, err := r.orders.Fetch(order.GatewayRef, nil, nil)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to fetch razorpay order")
		return false, fmt.Errorf("failed to fetch razorpay order: %w", err)
	}

	status, _ := fetched["status"].(string)
	r.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", status).
		Msg("payment status checked")

	return status == "paid", nil
}
