package handler

import (
	"net/http"

	"quickcart/internal/model"
	"quickcart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AssignmentHandler handles courier assignment requests.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("handler", "assignment").Logger(),
	}
}

// Assign handles POST /api/admin/assigned/assign-order.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req model.AssignOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Assign(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusCreated, "Orders assigned successfully", result)
}

// UpdateStatus handles PUT /api/admin/assigned/update-order-status.
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateAssignmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.service.UpdateStatus(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "Order status updated successfully", assignment)
}

// GetAssigned handles GET /api/admin/assigned/assigned-orders/:userId.
func (h *AssignmentHandler) GetAssigned(c *gin.Context) {
	assignment, err := h.service.GetAssigned(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "Assigned orders fetched successfully", assignment)
}

// Delete handles DELETE /api/admin/assigned/delete-assigned-order.
func (h *AssignmentHandler) Delete(c *gin.Context) {
	var req model.DeleteAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.service.Remove(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "Assigned order deleted successfully", assignment)
}
