package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"idCardStudioAPI/internal/notification"
)

// NotificationService records back-office alerts and pushes them to
// registered admin devices. Everything here is best-effort: a failed
// notification is logged and forgotten.
type NotificationService struct {
	db   *pgxpool.Pool
	push notification.PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the FCM client once it is available.
func (s *NotificationService) SetPushProvider(p notification.PushProvider) {
	s.push = p
}

// NotifyAdmins stores the notification and fans it out to admin device
// tokens. Returns the stored row; push failures do not fail the call.
func (s *NotificationService) NotifyAdmins(ctx context.Context, ntype notification.NotificationType, title, message string, data map[string]any) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:        uuid.New(),
		Type:      ntype,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	query := `
	INSERT INTO admin_notifications (id, type, title, message, is_read, created_at)
	VALUES ($1, $2, $3, $4, false, $5)
	`
	if _, err := s.db.Exec(ctx, query, n.ID, n.Type, n.Title, n.Message, n.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting notification: %w", err)
	}

	if s.push != nil {
		tokens, err := s.adminDeviceTokens(ctx)
		if err != nil {
			log.Printf("Notifications: token lookup failed: %v", err)
			return n, nil
		}
		if err := s.push.SendPush(ctx, tokens, title, message, data); err != nil {
			log.Printf("Notifications: push failed: %v", err)
		}
	}
	return n, nil
}

func (s *NotificationService) adminDeviceTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT token FROM admin_devices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// RegisterAdminDevice stores a device token for back-office pushes.
func (s *NotificationService) RegisterAdminDevice(ctx context.Context, userID, token, platform string) error {
	query := `
	INSERT INTO admin_devices (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3
	`
	if _, err := s.db.Exec(ctx, query, userID, token, platform, time.Now()); err != nil {
		return fmt.Errorf("registering device: %w", err)
	}
	return nil
}
