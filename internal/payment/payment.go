// Package payment integrates the online payment providers used at checkout.
package payment

import (
	"context"
	"sort"

	"quickcart/internal/model"

	"github.com/shopspring/decimal"
)

// Initiation is what a gateway hands back when a payment is started.
type Initiation struct {
	// RedirectURL is the hosted payment page, empty for client-side checkouts.
	RedirectURL string
	// Reference is the provider-side id of the payment, if any.
	Reference string
}

// Gateway is an online payment provider.
type Gateway interface {
	// Method is the paymentMethod value routed to this gateway.
	Method() string

	// Initiate starts a payment for order.
	Initiate(ctx context.Context, order *model.Order) (*Initiation, error)

	// Paid asks the provider whether order has been paid.
	Paid(ctx context.Context, order *model.Order) (bool, error)
}

// Registry resolves payment methods to gateways.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry builds a registry from gateways. A later gateway with the same
// method replaces an earlier one.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Method()] = g
	}
	return r
}

// Lookup returns the gateway serving method.
func (r *Registry) Lookup(method string) (Gateway, bool) {
	g, ok := r.gateways[method]
	return g, ok
}

// Methods lists the registered payment methods in sorted order.
func (r *Registry) Methods() []string {
	methods := make([]string, 0, len(r.gateways))
	for m := range r.gateways {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// MinorUnits converts a rupee amount to paise.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
