package handler

import (
	"net/http"

	"quickcart/internal/model"
	"quickcart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type OTPHandler struct {
	service service.OTPService
	logger  zerolog.Logger
}

func NewOTPHandler(service service.OTPService, logger zerolog.Logger) *OTPHandler {
	return &OTPHandler{
		service: service,
		logger:  logger.With().Str("handler", "otp").Logger(),
	}
}

// Send handles POST /api/auth/otp/send-otp.
func (h *OTPHandler) Send(c *gin.Context) {
	var req model.SendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Send(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "OTP sent successfully", nil)
}

// Verify handles POST /api/auth/otp/verify-otp.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req model.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Verify(c.Request.Context(), req.Email, string(req.OTP)); err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "OTP verified successfully", nil)
}
