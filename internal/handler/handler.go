// Package handler exposes the services over HTTP.
package handler

import (
	"errors"
	"net/http"

	"quickcart/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInsufficientStock:
		return http.StatusConflict
	case model.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Errors that are not domain
// errors are reported as internal errors without their text.
func respondError(c *gin.Context, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "Internal server error",
		})
		return
	}

	status := statusFor(de.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Str("code", de.Code).Int("status", status).Msg("request rejected")
	}

	c.JSON(status, model.ErrorResponse{Error: de.Code, Message: de.Message})
}

// bindJSON decodes the body into dst and answers 400 on failure. Binding
// tag violations are validation errors; anything else is malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	code := model.ErrCodeInvalidJSON
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		code = model.ErrCodeValidation
	}
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: code, Message: err.Error()})
	return false
}
