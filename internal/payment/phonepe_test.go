package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quickcart/internal/config"
	"quickcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhonePeConfig(baseURL string) config.PhonePeConfig {
	return config.PhonePeConfig{
		Enabled:     true,
		BaseURL:     baseURL,
		MerchantID:  "PGTESTPAYUAT",
		SaltKey:     "salt-key",
		KeyIndex:    1,
		RedirectURL: "http://localhost:5000/api/shop/order/status",
	}
}

func testOrder() *model.Order {
	id := uuid.New()
	return &model.Order{
		ID:          id,
		UserID:      "user-1",
		PaymentID:   id.String(),
		TotalAmount: decimal.RequireFromString("649.50"),
	}
}

func TestPhonePe_Initiate(t *testing.T) {
	order := testOrder()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/v1/pay", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, PayChecksum(body["request"], "salt-key", 1), r.Header.Get("X-VERIFY"))

		raw, err := base64.StdEncoding.DecodeString(body["request"])
		require.NoError(t, err)
		var payload phonePePayRequest
		require.NoError(t, json.Unmarshal(raw, &payload))

		assert.Equal(t, "PGTESTPAYUAT", payload.MerchantID)
		assert.Equal(t, "user-1", payload.MerchantUserID)
		assert.Equal(t, int64(64950), payload.Amount)
		assert.Equal(t, order.PaymentID, payload.MerchantTransactionID)
		assert.Equal(t, "http://localhost:5000/api/shop/order/status/?id="+order.ID.String(), payload.RedirectURL)
		assert.Equal(t, "POST", payload.RedirectMode)
		assert.Equal(t, "PAY_PAGE", payload.PaymentInstrument.Type)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"type":"PAY_PAGE","redirectInfo":{"url":"https://pay.example/page","method":"GET"}}}}`))
	}))
	defer server.Close()

	gw := NewPhonePe(testPhonePeConfig(server.URL), server.Client(), zerolog.Nop())

	started, err := gw.Initiate(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/page", started.RedirectURL)
	assert.Equal(t, order.PaymentID, started.Reference)
}

func TestPhonePe_Initiate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		errorMsg string
	}{
		{name: "rejected", status: http.StatusBadRequest, body: `{"success":false,"code":"BAD_REQUEST"}`, errorMsg: "BAD_REQUEST"},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, errorMsg: "status 502"},
		{name: "garbage body", status: http.StatusOK, body: `<html>`, errorMsg: "failed to decode"},
		{name: "missing redirect", status: http.StatusOK, body: `{"success":true}`, errorMsg: "no redirect URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gw := NewPhonePe(testPhonePeConfig(server.URL), server.Client(), zerolog.Nop())
			_, err := gw.Initiate(context.Background(), testOrder())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestPhonePe_Paid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    bool
		wantErr bool
	}{
		{name: "success", body: `{"success":true,"code":"PAYMENT_SUCCESS"}`, want: true},
		{name: "pending", body: `{"success":false,"code":"PAYMENT_PENDING"}`, want: false},
		{name: "undecodable", body: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/pg/v1/status/PGTESTPAYUAT/"+order.PaymentID, r.URL.Path)
				assert.Equal(t, StatusChecksum("PGTESTPAYUAT", order.PaymentID, "salt-key", 1), r.Header.Get("X-VERIFY"))
				assert.Equal(t, "PGTESTPAYUAT", r.Header.Get("X-MERCHANT-ID"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gw := NewPhonePe(testPhonePeConfig(server.URL), server.Client(), zerolog.Nop())
			paid, err := gw.Paid(context.Background(), order)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, paid)
		})
	}
}

func TestPhonePe_Paid_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	gw := NewPhonePe(testPhonePeConfig(url), nil, zerolog.Nop())
	_, err := gw.Paid(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phonepe request failed")
}
