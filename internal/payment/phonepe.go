package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/model"

	"github.com/rs/zerolog"
)

const defaultHTTPTimeout = 15 * time.Second

type phonePePayRequest struct {
	MerchantID            string                   `json:"merchantId"`
	MerchantUserID        string                   `json:"merchantUserId"`
	Amount                int64                    `json:"amount"`
	MerchantTransactionID string                   `json:"merchantTransactionId"`
	RedirectURL           string                   `json:"redirectUrl"`
	RedirectMode          string                   `json:"redirectMode"`
	PaymentInstrument     phonePePaymentInstrument `json:"paymentInstrument"`
}

type phonePePaymentInstrument struct {
	Type string `json:"type"`
}

type phonePeResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// PhonePe is the PhonePe standard checkout gateway.
type PhonePe struct {
	cfg    config.PhonePeConfig
	client *http.Client
	logger zerolog.Logger
}

// NewPhonePe creates a PhonePe gateway. A nil client gets a default with a
// request timeout.
func NewPhonePe(cfg config.PhonePeConfig, client *http.Client, logger zerolog.Logger) *PhonePe {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &PhonePe{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "phonepe").Logger(),
	}
}

func (p *PhonePe) Method() string {
	return model.PaymentMethodPhonePe
}

// Initiate posts the signed pay request and returns the hosted page URL. The
// order's paymentId is used as the merchant transaction id.
func (p *PhonePe) Initiate(ctx context.Context, order *model.Order) (*Initiation, error) {
	txnID := transactionID(order)

	payload, err := json.Marshal(phonePePayRequest{
		MerchantID:            p.cfg.MerchantID,
		MerchantUserID:        order.UserID,
		Amount:                MinorUnits(order.TotalAmount),
		MerchantTransactionID: txnID,
		RedirectURL:           strings.TrimRight(p.cfg.RedirectURL, "/") + "/?id=" + order.ID.String(),
		RedirectMode:          "POST",
		PaymentInstrument:     phonePePaymentInstrument{Type: "PAY_PAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pay request: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(payload)
	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url(phonePePayPath), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build pay request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", PayChecksum(encoded, p.cfg.SaltKey, p.cfg.KeyIndex))

	resp, err := p.do(req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		p.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("code", resp.Code).
			Msg("pay request rejected")
		return nil, fmt.Errorf("pay request rejected: %s", resp.Code)
	}

	redirect := resp.Data.InstrumentResponse.RedirectInfo.URL
	if redirect == "" {
		return nil, errors.New("pay response carried no redirect URL")
	}

	p.logger.Info().
		Str("order_id", order.ID.String()).
		Str("transaction_id", txnID).
		Msg("payment initiated")

	return &Initiation{RedirectURL: redirect, Reference: txnID}, nil
}

// Paid queries the transaction status. Only a success flag from the provider
// counts as paid.
func (p *PhonePe) Paid(ctx context.Context, order *model.Order) (bool, error) {
	txnID := transactionID(order)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url(statusPath(p.cfg.MerchantID, txnID)), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", StatusChecksum(p.cfg.MerchantID, txnID, p.cfg.SaltKey, p.cfg.KeyIndex))
	req.Header.Set("X-MERCHANT-ID", p.cfg.MerchantID)

	resp, err := p.do(req)
	if err != nil {
		return false, err
	}

	p.logger.Info().
		Str("order_id", order.ID.String()).
		Str("code", resp.Code).
		Bool("success", resp.Success).
		Msg("payment status checked")

	return resp.Success, nil
}

func (p *PhonePe) url(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

// do sends req and decodes the provider envelope. Server errors and
// undecodable bodies are errors; a decoded failure envelope is not.
func (p *PhonePe) do(req *http.Request) (*phonePeResponse, error) {
	res, err := p.client.Do(req)
	if err != nil {
		p.logger.Error().Err(err).Str("path", req.URL.Path).Msg("phonepe request failed")
		return nil, fmt.Errorf("phonepe request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read phonepe response: %w", err)
	}

	if res.StatusCode >= http.StatusInternalServerError {
		p.logger.Error().Int("status", res.StatusCode).Str("path", req.URL.Path).Msg("phonepe server error")
		return nil, fmt.Errorf("phonepe returned status %d", res.StatusCode)
	}

	var out phonePeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode phonepe response (status %d): %w", res.StatusCode, err)
	}

	return &out, nil
}

func transactionID(order *model.Order) string {
	if order.PaymentID != "" {
		return order.PaymentID
	}
	return order.ID.String()
}
