package model

import "time"

// PushToken is the latest device token registered by a user.
type PushToken struct {
	UserID    string    `json:"userId" db:"user_id"`
	PushToken string    `json:"pushToken" db:"push_token"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PushMessage is one outbound push notification.
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushTicket is the provider's per-message receipt.
type PushTicket struct {
	ID      string         `json:"id,omitempty"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StoreTokenRequest registers a device token.
type StoreTokenRequest struct {
	UserID    string `json:"userId" binding:"required"`
	PushToken string `json:"pushToken" binding:"required"`
}

// BroadcastRequest pushes to every registered device. A TriggerTime in the
// future defers the broadcast.
type BroadcastRequest struct {
	Title       string     `json:"title" binding:"required"`
	Body        string     `json:"body" binding:"required"`
	TriggerTime *time.Time `json:"triggerTime,omitempty"`
}

// BroadcastResult carries the collected tickets, empty for a scheduled
// broadcast, and the scheduled time when there is one.
type BroadcastResult struct {
	Tickets     []PushTicket `json:"tickets"`
	ScheduledAt *time.Time   `json:"scheduledAt,omitempty"`
}

// SendToUserRequest pushes to a single user.
type SendToUserRequest struct {
	UserID string `json:"userId" binding:"required"`
	Title  string `json:"title" binding:"required"`
	Body   string `json:"body" binding:"required"`
}
