package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickcart/internal/config"
	"quickcart/internal/mailer"
	"quickcart/internal/model"
	"quickcart/internal/payment"
	"quickcart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	orderOTPDigits = 4
	// notifyTimeout bounds the confirmation mail and admin push of a COD
	// order, which run after the order is already committed.
	notifyTimeout = 20 * time.Second
)

// UserNotifier pushes a notification to one user.
type UserNotifier interface {
	SendToUser(ctx context.Context, userID, title, body string) ([]model.PushTicket, error)
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	gateways    *payment.Registry
	notifier    UserNotifier
	mailer      mailer.Mailer
	renderer    *mailer.Renderer
	adminUserID string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	gateways *payment.Registry,
	notifier UserNotifier,
	m mailer.Mailer,
	renderer *mailer.Renderer,
	cfg config.PaymentConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		gateways:    gateways,
		notifier:    notifier,
		mailer:      m,
		renderer:    renderer,
		adminUserID: cfg.AdminUserID,
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create persists the order before any gateway call, so a failed initiation
// leaves a pending order behind.
func (s *orderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	method := strings.ToLower(req.PaymentMethod)
	var gateway payment.Gateway
	if method != model.PaymentMethodCOD {
		g, ok := s.gateways.Lookup(method)
		if !ok {
			s.logger.Warn().Str("payment_method", req.PaymentMethod).Msg("unsupported payment method")
			return nil, model.ErrUnsupportedMethod
		}
		gateway = g
	}

	now := s.now().UTC()
	id := uuid.New()
	order := &model.Order{
		ID:              id,
		UserID:          req.UserID,
		CartID:          req.CartID,
		CartItems:       req.CartItems,
		AddressInfo:     req.AddressInfo,
		OrderStatus:     model.OrderPending,
		PaymentMethod:   method,
		PaymentStatus:   model.PaymentPending,
		TotalAmount:     req.TotalAmount,
		PaymentID:       id.String(),
		OrderDate:       now,
		OrderUpdateDate: now,
	}

	if gateway == nil {
		code, err := randomCode(orderOTPDigits)
		if err != nil {
			return nil, err
		}
		order.OrderStatus = model.OrderConfirmed
		order.OrderOTP = code
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, model.WrapPersistence("Error while creating order", err)
	}

	if gateway == nil {
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Str("user_id", order.UserID).
			Msg("cash on delivery order created")

		s.notifyCOD(ctx, order, req.Email)
		return &model.CreateOrderResponse{OrderID: order.ID, OrderOTP: order.OrderOTP}, nil
	}

	started, err := gateway.Initiate(ctx, order)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("payment_method", method).
			Msg("payment initiation failed")
		return nil, model.WrapGateway("Error while creating order", err)
	}

	if started.Reference != "" {
		if err := s.orderRepo.SetGatewayRef(ctx, order.ID, started.Reference); err != nil {
			return nil, model.WrapPersistence("Error while creating order", err)
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_method", method).
		Msg("order created, awaiting payment")

	return &model.CreateOrderResponse{
		OrderID:     order.ID,
		ApprovalURL: started.RedirectURL,
		GatewayRef:  started.Reference,
	}, nil
}

// notifyCOD mails the customer and pushes to the admin. Failures are logged
// only; the order is already committed.
func (s *orderService) notifyCOD(ctx context.Context, order *model.Order, email string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if email != "" {
		msg, err := s.renderer.Render(mailer.TemplateOrderConfirmation, email, mailer.OrderConfirmationData{
			OrderID: order.ID.String(),
			Total:   order.TotalAmount,
			Items:   order.CartItems,
			Address: order.AddressInfo,
			OTP:     order.OrderOTP,
		})
		if err == nil {
			err = s.mailer.Send(ctx, msg)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order confirmation mail failed")
		}
	}

	if s.adminUserID != "" {
		body := fmt.Sprintf("Order %s placed for Rs. %s", order.ID, order.TotalAmount.StringFixed(2))
		if _, err := s.notifier.SendToUser(ctx, s.adminUserID, "New COD order", body); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("admin notification failed")
		}
	}
}

// Capture confirms payment at most once per order. All writes of a capture
// share one transaction.
func (s *orderService) Capture(ctx context.Context, id uuid.UUID) (result *model.CaptureResult, err error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, model.WrapPersistence("Error while capturing payment", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.PaymentStatus == model.PaymentPaid {
		s.logger.Info().Str("order_id", id.String()).Msg("order already paid")
		return &model.CaptureResult{OrderID: id, Paid: true, AlreadyPaid: true}, nil
	}

	gateway, ok := s.gateways.Lookup(order.PaymentMethod)
	if !ok {
		return nil, model.ErrUnsupportedMethod
	}

	paid, err := gateway.Paid(ctx, order)
	if err != nil {
		return nil, model.WrapGateway("Error while capturing payment", err)
	}
	if !paid {
		s.logger.Info().Str("order_id", id.String()).Msg("gateway reports payment not completed")
		return &model.CaptureResult{OrderID: id, Paid: false}, nil
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, model.WrapPersistence("Error while capturing payment", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	claimed, err := s.orderRepo.ClaimPayment(ctx, tx, id, s.now().UTC())
	if err != nil {
		return nil, model.WrapPersistence("Error while capturing payment", err)
	}
	if !claimed {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.logger.Info().Str("order_id", id.String()).Msg("payment captured concurrently")
		return &model.CaptureResult{OrderID: id, Paid: true, AlreadyPaid: true}, nil
	}

	for _, item := range order.CartItems {
		var ok bool
		ok, err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, model.WrapPersistence("Error while capturing payment", err)
		}
		if !ok {
			name := item.Title
			if name == "" {
				name = item.ProductID
			}
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("insufficient stock at capture")
			err = model.NewDomainError(model.KindInsufficientStock, model.ErrCodeInsufficientStock,
				fmt.Sprintf("Not enough stock for product %s", name))
			return nil, err
		}
	}

	if order.CartID != nil {
		if err = s.cartRepo.Delete(ctx, tx, *order.CartID); err != nil {
			return nil, model.WrapPersistence("Error while capturing payment", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, model.WrapPersistence("Error while capturing payment", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Int("item_count", len(order.CartItems)).
		Msg("payment captured")

	return &model.CaptureResult{OrderID: id, Paid: true}, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId is required")
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, model.WrapPersistence("Failed to load orders", err)
	}
	if len(orders) == 0 {
		return nil, model.ErrNoOrders
	}

	return orders, nil
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, model.WrapPersistence("Failed to load orders", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) AddReview(ctx context.Context, req *model.AddReviewRequest) (*model.Order, error) {
	if req.OrderID == uuid.Nil {
		return nil, model.NewValidationError("orderId is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, model.NewValidationError("rating must be between 1 and 5")
	}

	review := model.Review{
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: s.now().UTC(),
	}

	order, err := s.orderRepo.SetReview(ctx, req.OrderID, review)
	if err != nil {
		return nil, model.WrapPersistence("Error adding review", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", req.OrderID.String()).Int("rating", req.Rating).Msg("review added")
	return order, nil
}

func (s *orderService) validateCreateRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is nil")
	}
	if req.UserID == "" {
		return model.NewValidationError("userId is required")
	}
	if req.PaymentMethod == "" {
		return model.NewValidationError("paymentMethod is required")
	}
	if len(req.CartItems) == 0 {
		return model.NewValidationError("order must contain at least one item")
	}

	for i, item := range req.CartItems {
		if item.ProductID == "" {
			return model.NewValidationError(fmt.Sprintf("item %d: productId is required", i))
		}
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.NewValidationError(fmt.Sprintf("item %d: quantity must be positive", i))
		}
	}

	if !req.TotalAmount.IsPositive() {
		return model.NewValidationError("totalAmount must be positive")
	}

	a := req.AddressInfo
	if a.Address == "" || a.City == "" || a.Pincode == "" || a.Phone == "" {
		return model.NewValidationError("addressInfo requires address, city, pincode and phone")
	}

	return nil
}
