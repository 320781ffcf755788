package handler

import (
	"net/http"
	"strconv"

	"quickcart/internal/model"
	"quickcart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultProductLimit = 10

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/shop/products?limit=&offset=&inStock=.
func (h *ProductHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultProductLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	inStock, ok := queryBool(c, "inStock")
	if !ok {
		return
	}

	products, err := h.service.List(c.Request.Context(), model.ProductFilter{
		Limit:   limit,
		Offset:  offset,
		InStock: inStock,
	})
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "", products)
}

// GetByID handles GET /api/shop/products/:id.
func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "", product)
}

// CheckAvailability handles POST /api/shop/products/availability. An
// unavailable cart is still a 200; the body says which lines fall short.
func (h *ProductHandler) CheckAvailability(c *gin.Context) {
	var req model.AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "", result)
}

func queryBool(c *gin.Context, key string) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "invalid " + key + " parameter",
		})
		return false, false
	}
	return v, true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "invalid " + key + " parameter",
		})
		return 0, false
	}
	return v, true
}
