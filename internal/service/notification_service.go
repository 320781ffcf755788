package service

import (
	"context"
	"sync"
	"time"

	"quickcart/internal/model"
	"quickcart/internal/push"
	"quickcart/internal/repository"

	"github.com/rs/zerolog"
)

// scheduledSendTimeout bounds a deferred broadcast once its timer fires.
const scheduledSendTimeout = 2 * time.Minute

var pushData = map[string]string{"withSome": "data"}

type notificationService struct {
	tokens repository.TokenRepository
	sender push.Sender
	now    func() time.Time
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[*time.Timer]struct{}
	closed  bool
}

// NewNotificationService creates the push notification workflow.
func NewNotificationService(tokens repository.TokenRepository, sender push.Sender, logger zerolog.Logger) NotificationService {
	return &notificationService{
		tokens:  tokens,
		sender:  sender,
		now:     time.Now,
		logger:  logger.With().Str("service", "notification").Logger(),
		pending: make(map[*time.Timer]struct{}),
	}
}

func (s *notificationService) StoreToken(ctx context.Context, req *model.StoreTokenRequest) error {
	if req.UserID == "" || req.PushToken == "" {
		return model.NewValidationError("User ID and Push Token are required")
	}

	err := s.tokens.Upsert(ctx, model.PushToken{
		UserID:    req.UserID,
		PushToken: req.PushToken,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return model.WrapPersistence("Error storing token", err)
	}

	s.logger.Debug().Str("user_id", req.UserID).Msg("push token stored")
	return nil
}

func (s *notificationService) Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error) {
	if req.Title == "" || req.Body == "" {
		return nil, model.NewValidationError("Title and Body are required")
	}

	if req.TriggerTime != nil && req.TriggerTime.After(s.now()) {
		at := req.TriggerTime.UTC()
		if err := s.schedule(at, req.Title, req.Body); err != nil {
			return nil, err
		}
		return &model.BroadcastResult{Tickets: []model.PushTicket{}, ScheduledAt: &at}, nil
	}

	tickets, err := s.broadcast(ctx, req.Title, req.Body)
	if err != nil {
		return nil, err
	}
	return &model.BroadcastResult{Tickets: tickets}, nil
}

func (s *notificationService) broadcast(ctx context.Context, title, body string) ([]model.PushTicket, error) {
	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, model.WrapPersistence("Error loading push tokens", err)
	}

	messages := make([]model.PushMessage, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, newPushMessage(t.PushToken, title, body))
	}

	if len(messages) == 0 {
		s.logger.Info().Msg("no push tokens registered, nothing to send")
		return []model.PushTicket{}, nil
	}

	tickets, err := s.sender.Publish(ctx, messages)
	if err != nil {
		// Chunks before the failed one were accepted and are not resent;
		// their tickets are the only trace of what went out.
		if len(tickets) > 0 {
			s.logger.Warn().
				Err(err).
				Int("recipients", len(messages)).
				Int("delivered", len(tickets)).
				Strs("ticket_ids", ticketIDs(tickets)).
				Msg("broadcast partially sent")
		}
		return tickets, model.WrapDelivery("Error sending notifications", err)
	}

	s.logger.Info().
		Int("recipients", len(messages)).
		Int("tickets", len(tickets)).
		Msg("broadcast sent")

	return tickets, nil
}

func (s *notificationService) schedule(at time.Time, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.NewDomainError(model.KindDelivery, model.ErrCodeDelivery, "Notification scheduler is shut down")
	}

	var timer *time.Timer
	timer = time.AfterFunc(at.Sub(s.now()), func() {
		s.mu.Lock()
		delete(s.pending, timer)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), scheduledSendTimeout)
		defer cancel()

		if _, err := s.broadcast(ctx, title, body); err != nil {
			s.logger.Error().Err(err).Time("trigger_time", at).Msg("scheduled broadcast failed")
		}
	})
	s.pending[timer] = struct{}{}

	s.logger.Info().Time("trigger_time", at).Msg("broadcast scheduled")
	return nil
}

func (s *notificationService) SendToUser(ctx context.Context, userID, title, body string) ([]model.PushTicket, error) {
	if userID == "" || title == "" || body == "" {
		return nil, model.NewValidationError("User ID, Title, and Body are required")
	}

	token, err := s.tokens.GetByUser(ctx, userID)
	if err != nil {
		return nil, model.WrapPersistence("Error loading push token", err)
	}
	if token == nil {
		return nil, model.ErrTokenNotFound
	}

	tickets, err := s.sender.Publish(ctx, []model.PushMessage{newPushMessage(token.PushToken, title, body)})
	if err != nil {
		return nil, model.WrapDelivery("Error sending notification", err)
	}

	s.logger.Debug().Str("user_id", userID).Msg("notification sent to user")
	return tickets, nil
}

func (s *notificationService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for timer := range s.pending {
		timer.Stop()
	}
	if n := len(s.pending); n > 0 {
		s.logger.Warn().Int("cancelled", n).Msg("pending broadcasts cancelled")
	}
	s.pending = make(map[*time.Timer]struct{})
	s.closed = true
}

func ticketIDs(tickets []model.PushTicket) []string {
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func newPushMessage(to, title, body string) model.PushMessage {
	return model.PushMessage{
		To:    to,
		Title: title,
		Body:  body,
		Sound: "default",
		Data:  pushData,
	}
}
