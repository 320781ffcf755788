package handler

import (
	"net/http"
	"net/url"

	"quickcart/internal/config"
	"quickcart/internal/model"
	"quickcart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles checkout, the gateway callback and order reads.
type OrderHandler struct {
	service    service.OrderService
	successURL string
	failureURL string
	logger     zerolog.Logger
}

// NewOrderHandler creates a new order handler. When cfg carries success and
// failure URLs the gateway callback redirects there instead of answering
// with JSON.
func NewOrderHandler(service service.OrderService, cfg config.PaymentConfig, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:    service,
		successURL: cfg.SuccessURL,
		failureURL: cfg.FailureURL,
		logger:     logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/shop/order/create.
func (h *OrderHandler) Create(c *gin.Context) {
	var req model.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusCreated, "Order created", resp)
}

// Status handles the gateway callback at /api/shop/order/status?id=.
func (h *OrderHandler) Status(c *gin.Context) {
	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.fail(c, c.Query("id"), model.NewValidationError("invalid order id"))
		return
	}

	result, err := h.service.Capture(c.Request.Context(), id)
	if err != nil {
		h.fail(c, id.String(), err)
		return
	}

	if !result.Paid {
		h.fail(c, id.String(), model.NewValidationError("Payment failed"))
		return
	}

	if h.successURL != "" {
		c.Redirect(http.StatusFound, withOrderID(h.successURL, id.String()))
		return
	}

	message := "Payment captured"
	if result.AlreadyPaid {
		message = "Payment already captured"
	}
	respond(c, http.StatusOK, message, result)
}

func (h *OrderHandler) fail(c *gin.Context, id string, err error) {
	if h.failureURL != "" {
		h.logger.Warn().Err(err).Str("order_id", id).Msg("payment capture failed")
		c.Redirect(http.StatusFound, withOrderID(h.failureURL, id))
		return
	}
	respondError(c, err, h.logger)
}

func withOrderID(base, id string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String()
}

// ListByUser handles GET /api/shop/order/list/:userId.
func (h *OrderHandler) ListByUser(c *gin.Context) {
	orders, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "", orders)
}

// GetByID handles GET /api/shop/order/details/:id.
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, model.ErrOrderNotFound, h.logger)
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "", order)
}

// AddReview handles POST /api/shop/order/add-review.
func (h *OrderHandler) AddReview(c *gin.Context) {
	var req model.AddReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.service.AddReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "Review added", order)
}
