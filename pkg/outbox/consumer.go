package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// Consumer turns queued events into stored in-app notifications, once per id.
type Consumer struct {
	store  storage.NotificationStore
	dedup  Deduper
	logger *zap.Logger
}

// NewConsumer creates a Consumer.
func NewConsumer(store storage.NotificationStore, dedup Deduper, logger *zap.Logger) *Consumer {
	return &Consumer{store: store, dedup: dedup, logger: logger}
}

// Deliver stores a single event. Redelivered ids are acknowledged without writing.
func (c *Consumer) Deliver(ctx context.Context, body string) error {
	var event Event
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return fmt.Errorf("failed to unmarshal notification event: %w", err)
	}
	if event.Id == "" || event.UserId == "" {
		return fmt.Errorf("notification event is missing id or user_id")
	}

	fresh, err := c.dedup.Claim(ctx, event.Id)
	if err != nil {
		return err
	}
	if !fresh {
		c.logger.Info("duplicate notification skipped", zap.String("notification_id", event.Id))
		return nil
	}

	if err := c.store.SaveNotification(ctx, event.Notification()); err != nil {
		if relErr := c.dedup.Release(ctx, event.Id); relErr != nil {
			c.logger.Warn("failed to release notification claim", zap.String("notification_id", event.Id), zap.Error(relErr))
		}
		return err
	}

	c.logger.Info("notification delivered",
		zap.String("notification_id", event.Id),
		zap.String("user_id", event.UserId),
		zap.String("type", string(event.Type)),
	)
	return nil
}

// HandleSQSEvent delivers every record and reports the failed ones so only
// those are retried by SQS.
func (c *Consumer) HandleSQSEvent(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		if err := c.Deliver(ctx, message.Body); err != nil {
			c.logger.Error("failed to deliver notification",
				zap.String("message_id", message.MessageId),
				zap.Error(err),
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}
