package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"quickcart/internal/model"

	"github.com/shopspring/decimal"
)

// OTPData feeds TemplateOTP.
type OTPData struct {
	Code    string
	Minutes int
}

// OrderConfirmationData feeds TemplateOrderConfirmation.
type OrderConfirmationData struct {
	OrderID string
	Total   decimal.Decimal
	Items   []model.CartItem
	Address model.AddressInfo
	OTP     string
}

// Renderer turns named templates into messages. Each template defines a
// "subject" and a "body" block.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer loads and parses every template in names up front.
func NewRenderer(ctx context.Context, loader Loader, names ...string) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		src, err := loader.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		for _, block := range []string{"subject", "body"} {
			if tmpl.Lookup(block) == nil {
				return nil, fmt.Errorf("template %s does not define %q", name, block)
			}
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render builds a message to recipient from the named template.
func (r *Renderer) Render(name, to string, data any) (Message, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %s", name)
	}

	var subject, body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s subject: %w", name, err)
	}
	if err := tmpl.ExecuteTemplate(&body, "body", data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s body: %w", name, err)
	}

	return Message{
		To:      to,
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}
