package service

import (
	"context"
	"time"

	"quickcart/internal/model"
	"quickcart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type assignmentService struct {
	assignRepo repository.AssignmentRepository
	orderRepo  repository.OrderRepository
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAssignmentService creates the courier assignment workflow.
func NewAssignmentService(
	assignRepo repository.AssignmentRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignRepo: assignRepo,
		orderRepo:  orderRepo,
		now:        time.Now,
		logger:     logger.With().Str("service", "assignment").Logger(),
	}
}

// Assign appends orders to the courier's list, creating it on first use.
// Orders already on the list are left as they are and reported as skipped.
func (s *assignmentService) Assign(ctx context.Context, req *model.AssignOrderRequest) (result *model.AssignResult, err error) {
	if req.DeliveryUserID == "" || len(req.Orders) == 0 {
		return nil, model.NewValidationError("deliveryUserId and valid orders are required")
	}

	now := s.now().UTC()
	entries := make([]model.AssignedOrderEntry, 0, len(req.Orders))
	for _, o := range req.Orders {
		if o.OrderID == uuid.Nil {
			return nil, model.NewValidationError("orderId is required for every order")
		}

		status := o.Status
		if status == "" {
			status = model.DeliveryAssigned
		}
		if !status.Valid() {
			return nil, model.ErrInvalidStatus
		}

		existing, err := s.orderRepo.GetByID(ctx, o.OrderID)
		if err != nil {
			return nil, model.WrapPersistence("Error assigning orders", err)
		}
		if existing == nil {
			return nil, model.ErrOrderNotFound
		}

		var deliveredAt *time.Time
		if status == model.DeliveryDelivered {
			deliveredAt = &now
		}

		entries = append(entries, model.AssignedOrderEntry{
			ID:          uuid.New(),
			OrderID:     o.OrderID,
			Status:      status,
			Routes:      o.Routes,
			AssignedAt:  now,
			DeliveredAt: deliveredAt,
		})
	}

	tx, err := s.assignRepo.BeginTx(ctx)
	if err != nil {
		return nil, model.WrapPersistence("Error assigning orders", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	assignmentID, err := s.assignRepo.FindOrCreate(ctx, tx, req.DeliveryUserID, now)
	if err != nil {
		return nil, model.WrapPersistence("Error assigning orders", err)
	}

	inserted, err := s.assignRepo.AddEntries(ctx, tx, assignmentID, entries)
	if err != nil {
		return nil, model.WrapPersistence("Error assigning orders", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, model.WrapPersistence("Error assigning orders", err)
	}

	skipped := skippedOrders(entries, inserted)
	if len(skipped) > 0 {
		s.logger.Info().
			Str("user_id", req.DeliveryUserID).
			Int("skipped", len(skipped)).
			Msg("orders already assigned to courier")
	}

	assignment, loadErr := s.reload(ctx, req.DeliveryUserID, "Error assigning orders")
	if loadErr != nil {
		return nil, loadErr
	}

	s.logger.Info().
		Str("user_id", req.DeliveryUserID).
		Int("assigned", len(inserted)).
		Msg("orders assigned")

	return &model.AssignResult{Assignment: assignment, Skipped: skipped}, nil
}

// skippedOrders lists requested order ids missing from inserted, once each.
func skippedOrders(entries []model.AssignedOrderEntry, inserted []uuid.UUID) []uuid.UUID {
	remaining := make(map[uuid.UUID]int, len(inserted))
	for _, id := range inserted {
		remaining[id]++
	}

	var skipped []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, e := range entries {
		if remaining[e.OrderID] > 0 {
			remaining[e.OrderID]--
			continue
		}
		if !seen[e.OrderID] {
			seen[e.OrderID] = true
			skipped = append(skipped, e.OrderID)
		}
	}
	return skipped
}

// UpdateStatus accepts any of the delivery statuses regardless of the
// current one. Delivered stamps deliveredAt.
func (s *assignmentService) UpdateStatus(ctx context.Context, req *model.UpdateAssignmentStatusRequest) (*model.AssignedOrder, error) {
	if req.UserID == "" || req.OrderID == uuid.Nil || req.Status == "" {
		return nil, model.NewValidationError("userId, orderId, and status are required")
	}
	if !req.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	assignment, err := s.assignRepo.GetByUser(ctx, req.UserID, false)
	if err != nil {
		return nil, model.WrapPersistence("Error updating order status", err)
	}
	if assignment == nil {
		return nil, model.ErrAssignmentNotFound
	}

	now := s.now().UTC()
	var deliveredAt *time.Time
	if req.Status == model.DeliveryDelivered {
		deliveredAt = &now
	}

	updated, err := s.assignRepo.UpdateEntryStatus(ctx, assignment.ID, req.OrderID, req.Status, deliveredAt, now)
	if err != nil {
		return nil, model.WrapPersistence("Error updating order status", err)
	}
	if !updated {
		return nil, model.ErrAssignedEntryGone
	}

	s.logger.Info().
		Str("user_id", req.UserID).
		Str("order_id", req.OrderID.String()).
		Str("status", string(req.Status)).
		Msg("assigned order status updated")

	return s.reload(ctx, req.UserID, "Error updating order status")
}

// GetAssigned returns the courier's list with every order resolved.
func (s *assignmentService) GetAssigned(ctx context.Context, userID string) (*model.AssignedOrder, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId is required")
	}

	assignment, err := s.assignRepo.GetByUser(ctx, userID, true)
	if err != nil {
		return nil, model.WrapPersistence("Error fetching assigned orders", err)
	}
	if assignment == nil {
		return nil, model.ErrAssignmentNotFound
	}

	return assignment, nil
}

// Remove drops every entry for the order. Removing an order that is not on
// the list is not an error.
func (s *assignmentService) Remove(ctx context.Context, req *model.DeleteAssignmentRequest) (*model.AssignedOrder, error) {
	if req.UserID == "" || req.OrderID == uuid.Nil {
		return nil, model.NewValidationError("userId and orderId are required")
	}

	assignment, err := s.assignRepo.GetByUser(ctx, req.UserID, false)
	if err != nil {
		return nil, model.WrapPersistence("Error deleting assigned order", err)
	}
	if assignment == nil {
		return nil, model.ErrAssignmentNotFound
	}

	removed, err := s.assignRepo.RemoveEntries(ctx, assignment.ID, req.OrderID, s.now().UTC())
	if err != nil {
		return nil, model.WrapPersistence("Error deleting assigned order", err)
	}

	s.logger.Info().
		Str("user_id", req.UserID).
		Str("order_id", req.OrderID.String()).
		Int64("removed", removed).
		Msg("assigned order deleted")

	return s.reload(ctx, req.UserID, "Error deleting assigned order")
}

func (s *assignmentService) reload(ctx context.Context, userID, failure string) (*model.AssignedOrder, error) {
	assignment, err := s.assignRepo.GetByUser(ctx, userID, false)
	if err != nil {
		return nil, model.WrapPersistence(failure, err)
	}
	if assignment == nil {
		return nil, model.ErrAssignmentNotFound
	}
	return assignment, nil
}
