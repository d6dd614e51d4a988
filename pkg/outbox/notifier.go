// Package outbox carries user notifications out of the money-movement path.
// Services publish after their ledger commit; a publish failure is logged and
// never reported as a ledger failure.
package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers a "notify user" event. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind models.NotificationType, message string, amount *int64)
}

// Event is the message published for a notification.
type Event struct {
	Id        string                  `json:"id"`
	UserId    string                  `json:"user_id"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	Amount    *int64                  `json:"amount,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewEvent stamps a notification with a fresh id.
func NewEvent(userID string, kind models.NotificationType, message string, amount *int64) Event {
	return Event{
		Id:        uuid.NewString(),
		UserId:    userID,
		Type:      kind,
		Message:   message,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// Notification converts the event into the stored in-app record.
func (e Event) Notification() *models.Notification {
	return &models.Notification{
		Id:        e.Id,
		UserId:    e.UserId,
		Type:      e.Type,
		Message:   e.Message,
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt,
	}
}

// Amount is a convenience for the optional amount argument.
func Amount(paise int64) *int64 {
	return &paise
}

// NoopNotifier drops notifications. It is used when no queue is configured.
type NoopNotifier struct {
	Logger *zap.Logger
}

// Notify only logs the event.
func (n *NoopNotifier) Notify(ctx context.Context, userID string, kind models.NotificationType, message string, amount *int64) {
	if n.Logger != nil {
		n.Logger.Debug("notification dropped", zap.String("user_id", userID), zap.String("type", string(kind)))
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records the event.
func (r *Recorder) Notify(ctx context.Context, userID string, kind models.NotificationType, message string, amount *int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, NewEvent(userID, kind, message, amount))
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// For returns the events recorded for a user.
func (r *Recorder) For(userID string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.UserId == userID {
			out = append(out, e)
		}
	}
	return out
}

var (
	_ Notifier = (*NoopNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
	_ Notifier = (*SQSNotifier)(nil)
)
