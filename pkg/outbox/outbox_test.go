package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage/memory"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSQS struct {
	mock.Mock
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sqs.SendMessageOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeRedis struct {
	keys   map[string]time.Duration
	setErr error
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestSQSNotifier(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := new(mockSQS)
		client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
			var e Event
			if err := json.Unmarshal([]byte(*in.MessageBody), &e); err != nil {
				return false
			}
			return *in.QueueUrl == "https://queue" && e.UserId == "user-1" && e.Type == models.NotifyReferralBonus && *e.Amount == 10000 && e.Id != ""
		})).Return(&sqs.SendMessageOutput{}, nil)

		n := NewSQSNotifier(client, "https://queue", zap.NewNop())
		n.Notify(context.Background(), "user-1", models.NotifyReferralBonus, "You earned ₹100.00", Amount(10000))

		client.AssertExpectations(t)
	})

	t.Run("Send Fails", func(t *testing.T) {
		client := new(mockSQS)
		client.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("queue unavailable"))

		n := NewSQSNotifier(client, "https://queue", zap.NewNop())
		err := n.Publish(context.Background(), NewEvent("user-1", models.NotifyRefund, "refund", nil))
		assert.ErrorContains(t, err, "failed to send message to SQS")

		assert.NotPanics(t, func() {
			n.Notify(context.Background(), "user-1", models.NotifyRefund, "refund", nil)
		})
		client.AssertExpectations(t)
	})
}

func TestRedisDeduper(t *testing.T) {
	ctx := context.Background()

	t.Run("Claims Once", func(t *testing.T) {
		rdb := &fakeRedis{keys: map[string]time.Duration{}}
		d := NewRedisDeduper(rdb, 0)

		fresh, err := d.Claim(ctx, "n-1")
		require.NoError(t, err)
		assert.True(t, fresh)
		assert.Equal(t, DefaultDedupTTL, rdb.keys["notified_n-1"])

		fresh, err = d.Claim(ctx, "n-1")
		require.NoError(t, err)
		assert.False(t, fresh)

		require.NoError(t, d.Release(ctx, "n-1"))
		fresh, _ = d.Claim(ctx, "n-1")
		assert.True(t, fresh)
	})

	t.Run("Redis Error", func(t *testing.T) {
		d := NewRedisDeduper(&fakeRedis{keys: map[string]time.Duration{}, setErr: errors.New("READONLY")}, time.Hour)

		_, err := d.Claim(ctx, "n-1")
		assert.Error(t, err)
	})
}

type failingStore struct {
	*memory.Store
}

func (failingStore) SaveNotification(context.Context, *models.Notification) error {
	return errors.New("table unavailable")
}

func TestConsumer(t *testing.T) {
	ctx := context.Background()
	event := NewEvent("user-1", models.NotifyPayoutApproved, "Your payout of ₹500.00 was approved", Amount(50000))
	body, _ := json.Marshal(event)

	t.Run("Delivers Once", func(t *testing.T) {
		store := memory.New()
		c := NewConsumer(store, &MemoryDeduper{}, zap.NewNop())

		resp, err := c.HandleSQSEvent(ctx, events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "m1", Body: string(body)},
			{MessageId: "m2", Body: string(body)},
		}})
		require.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)

		saved, err := store.ListNotifications(ctx, "user-1", 10)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, event.Id, saved[0].Id)
		assert.Equal(t, int64(50000), *saved[0].Amount)
	})

	t.Run("Partial Batch Failure", func(t *testing.T) {
		store := memory.New()
		c := NewConsumer(store, &MemoryDeduper{}, zap.NewNop())

		resp, err := c.HandleSQSEvent(ctx, events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "bad", Body: "{not json"},
			{MessageId: "good", Body: string(body)},
		}})
		require.NoError(t, err)
		require.Len(t, resp.BatchItemFailures, 1)
		assert.Equal(t, "bad", resp.BatchItemFailures[0].ItemIdentifier)
	})

	t.Run("Save Failure Releases Claim", func(t *testing.T) {
		dedup := &MemoryDeduper{}
		c := NewConsumer(failingStore{memory.New()}, dedup, zap.NewNop())

		assert.Error(t, c.Deliver(ctx, string(body)))

		fresh, _ := dedup.Claim(ctx, event.Id)
		assert.True(t, fresh)
	})
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Notify(context.Background(), "a", models.NotifyRefund, "x", nil)
	r.Notify(context.Background(), "b", models.NotifyRefund, "y", nil)

	assert.Len(t, r.Events(), 2)
	assert.Len(t, r.For("a"), 1)
}
