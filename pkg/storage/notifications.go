package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// NotificationStore persists delivered in-app notifications.
type NotificationStore interface {
	// SaveNotification stores a notification. Saving the same ID twice is a no-op.
	SaveNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications returns a user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string, limit int32) ([]models.Notification, error)
}
