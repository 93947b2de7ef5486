package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationDownload       NotificationType = "download_recorded"
	NotificationBulkCompleted  NotificationType = "bulk_completed"
	NotificationDesignUploaded NotificationType = "design_uploaded"
)

// Notification is one back-office alert row, shown to admin users in
// the dashboard.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// PushProvider delivers a notification to registered admin devices.
// FCM implements it; tests use a recording fake.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]any) error
}
