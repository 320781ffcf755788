package handler

import (
	"errors"
	"net/http"
	"testing"

	"quickcart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOTPHandler_Send(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(m *MockOTPService)
		expectedStatus int
	}{
		{
			name: "Sent",
			body: `{"email":"shopper@example.com"}`,
			setup: func(m *MockOTPService) {
				m.On("Send", mock.Anything, "shopper@example.com").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing email",
			body:           `{}`,
			setup:          func(m *MockOTPService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Mail failure",
			body: `{"email":"shopper@example.com"}`,
			setup: func(m *MockOTPService) {
				m.On("Send", mock.Anything, "shopper@example.com").Return(model.WrapDelivery("Failed to send OTP", errors.New("smtp")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockOTPService)
			tt.setup(m)
			h := NewOTPHandler(m, zerolog.Nop())

			w := perform(t, http.MethodPost, "/send-otp", "/send-otp", tt.body, h.Send)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "OTP sent successfully", decode(t, w)["message"])
			}
			m.AssertExpectations(t)
		})
	}
}

func TestOTPHandler_Verify(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(m *MockOTPService)
		expectedStatus int
	}{
		{
			name: "String code",
			body: `{"email":"shopper@example.com","otp":"482913"}`,
			setup: func(m *MockOTPService) {
				m.On("Verify", mock.Anything, "shopper@example.com", "482913").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Numeric code",
			body: `{"email":"shopper@example.com","otp":482913}`,
			setup: func(m *MockOTPService) {
				m.On("Verify", mock.Anything, "shopper@example.com", "482913").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong code",
			body: `{"email":"shopper@example.com","otp":"000000"}`,
			setup: func(m *MockOTPService) {
				m.On("Verify", mock.Anything, "shopper@example.com", "000000").Return(model.ErrInvalidOTP)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing code",
			body:           `{"email":"shopper@example.com"}`,
			setup:          func(m *MockOTPService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockOTPService)
			tt.setup(m)
			h := NewOTPHandler(m, zerolog.Nop())

			w := perform(t, http.MethodPost, "/verify-otp", "/verify-otp", tt.body, h.Verify)

			assert.Equal(t, tt.expectedStatus, w.Code)
			m.AssertExpectations(t)
		})
	}
}
