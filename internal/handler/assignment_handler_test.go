package handler

import (
	"net/http"
	"testing"

	"quickcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAssignmentHandler_Assign(t *testing.T) {
	orderID := uuid.New()
	doc := &model.AssignedOrder{ID: uuid.New(), UserID: "courier-7"}

	t.Run("created", func(t *testing.T) {
		m := new(MockAssignmentService)
		m.On("Assign", mock.Anything, mock.MatchedBy(func(req *model.AssignOrderRequest) bool {
			return req.DeliveryUserID == "courier-7" && len(req.Orders) == 1 &&
				req.Orders[0].OrderID == orderID && len(req.Orders[0].Routes) == 1 &&
				req.Orders[0].Routes[0].Polyline == "abc~"
		})).Return(&model.AssignResult{Assignment: doc}, nil)
		h := NewAssignmentHandler(m, zerolog.Nop())

		body := `{"deliveryUserId":"courier-7","orders":[{"orderId":"` + orderID.String() + `",` +
			`"routes":[{"startLocation":{"lat":18.5,"lng":73.8},"endLocation":{"lat":18.6,"lng":73.9},"polyline":"abc~"}]}]}`
		w := perform(t, http.MethodPost, "/assign-order", "/assign-order", body, h.Assign)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Orders assigned successfully", decode(t, w)["message"])
		m.AssertExpectations(t)
	})

	t.Run("no orders", func(t *testing.T) {
		m := new(MockAssignmentService)
		h := NewAssignmentHandler(m, zerolog.Nop())

		w := perform(t, http.MethodPost, "/assign-order", "/assign-order", `{"deliveryUserId":"courier-7","orders":[]}`, h.Assign)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything)
	})

	t.Run("unknown order", func(t *testing.T) {
		m := new(MockAssignmentService)
		m.On("Assign", mock.Anything, mock.Anything).Return(nil, model.ErrOrderNotFound)
		h := NewAssignmentHandler(m, zerolog.Nop())

		w := perform(t, http.MethodPost, "/assign-order", "/assign-order",
			`{"deliveryUserId":"courier-7","orders":[{"orderId":"`+orderID.String()+`"}]}`, h.Assign)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAssignmentHandler_UpdateStatus(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		status         string
		err            error
		expectedStatus int
	}{
		{name: "Updated", status: "Picked Up", expectedStatus: http.StatusOK},
		{name: "Invalid status", status: "Lost", err: model.ErrInvalidStatus, expectedStatus: http.StatusBadRequest},
		{name: "No assignment", status: "Delivered", err: model.ErrAssignmentNotFound, expectedStatus: http.StatusNotFound},
		{name: "Entry gone", status: "Delivered", err: model.ErrAssignedEntryGone, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockAssignmentService)
			req := &model.UpdateAssignmentStatusRequest{UserID: "courier-7", OrderID: orderID, Status: model.DeliveryStatus(tt.status)}
			if tt.err != nil {
				m.On("UpdateStatus", mock.Anything, req).Return(nil, tt.err)
			} else {
				m.On("UpdateStatus", mock.Anything, req).Return(&model.AssignedOrder{UserID: "courier-7"}, nil)
			}
			h := NewAssignmentHandler(m, zerolog.Nop())

			w := perform(t, http.MethodPut, "/update-order-status", "/update-order-status",
				map[string]any{"userId": "courier-7", "orderId": orderID, "status": tt.status}, h.UpdateStatus)

			assert.Equal(t, tt.expectedStatus, w.Code)
			m.AssertExpectations(t)
		})
	}
}

func TestAssignmentHandler_GetAssigned(t *testing.T) {
	m := new(MockAssignmentService)
	m.On("GetAssigned", mock.Anything, "courier-7").Return(&model.AssignedOrder{UserID: "courier-7"}, nil)
	m.On("GetAssigned", mock.Anything, "courier-9").Return(nil, model.ErrAssignmentNotFound)
	h := NewAssignmentHandler(m, zerolog.Nop())

	w := perform(t, http.MethodGet, "/assigned-orders/:userId", "/assigned-orders/courier-7", nil, h.GetAssigned)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Assigned orders fetched successfully", decode(t, w)["message"])

	w = perform(t, http.MethodGet, "/assigned-orders/:userId", "/assigned-orders/courier-9", nil, h.GetAssigned)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No assigned orders found for this user", decode(t, w)["message"])
}

func TestAssignmentHandler_Delete(t *testing.T) {
	orderID := uuid.New()
	m := new(MockAssignmentService)
	m.On("Remove", mock.Anything, &model.DeleteAssignmentRequest{UserID: "courier-7", OrderID: orderID}).
		Return(&model.AssignedOrder{UserID: "courier-7", Orders: []model.AssignedOrderEntry{}}, nil)
	h := NewAssignmentHandler(m, zerolog.Nop())

	w := perform(t, http.MethodDelete, "/delete-assigned-order", "/delete-assigned-order",
		map[string]any{"userId": "courier-7", "orderId": orderID}, h.Delete)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Assigned order deleted successfully", decode(t, w)["message"])
	m.AssertExpectations(t)

	w = perform(t, http.MethodDelete, "/delete-assigned-order", "/delete-assigned-order", `{"userId":"courier-7"}`, h.Delete)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
