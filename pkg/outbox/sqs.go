package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used by the notifier.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSNotifier publishes notification events to an SQS queue.
type SQSNotifier struct {
	Client   SQSAPI
	QueueURL string
	Logger   *zap.Logger
}

// NewSQSNotifier creates a new SQSNotifier.
func NewSQSNotifier(client SQSAPI, queueURL string, logger *zap.Logger) *SQSNotifier {
	return &SQSNotifier{
		Client:   client,
		QueueURL: queueURL,
		Logger:   logger,
	}
}

// Notify publishes the event and logs, rather than returns, any failure.
func (n *SQSNotifier) Notify(ctx context.Context, userID string, kind models.NotificationType, message string, amount *int64) {
	event := NewEvent(userID, kind, message, amount)
	if err := n.Publish(ctx, event); err != nil {
		n.Logger.Error("failed to publish notification",
			zap.String("notification_id", event.Id),
			zap.String("user_id", userID),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
	}
}

// Publish sends the event to the queue.
func (n *SQSNotifier) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification for SQS: %w", err)
	}

	_, err = n.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}
	return nil
}
