package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/chris/wallet-payout-engine/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListPayoutsByStatus(t *testing.T) {
	t.Run("Oldest First", func(t *testing.T) {
		now := time.Now().UTC()
		newer, _ := attributevalue.MarshalMap(models.Payout{Id: "newer", Status: models.PayoutPending, CreatedAt: now})
		older, _ := attributevalue.MarshalMap(models.Payout{Id: "older", Status: models.PayoutPending, CreatedAt: now.Add(-time.Hour)})

		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			status := in.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberS).Value
			return *in.IndexName == statusCreatedAtIndex && status == "pending"
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{newer, older}}, nil)

		store := New(mockClient, testTables)
		payouts, err := store.ListPayoutsByStatus(context.Background(), models.PayoutPending)

		require.NoError(t, err)
		require.Len(t, payouts, 2)
		assert.Equal(t, "older", payouts[0].Id)
		assert.Equal(t, "newer", payouts[1].Id)
		mockClient.AssertExpectations(t)
	})
}

func TestCreatePayout(t *testing.T) {
	t.Run("Unreserved", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, testTables)
		err := store.CreatePayout(context.Background(), &models.Payout{Id: "payout-1", Amount: 1000}, nil)

		assert.NoError(t, err)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
		mockClient.AssertExpectations(t)
	})

	t.Run("Reserved", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return len(in.TransactItems) == 3 &&
				*in.TransactItems[0].Put.TableName == "payouts" &&
				*in.TransactItems[1].Put.TableName == "ledger"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		reservation := bonusPosting("companion-1", 4, 50000, -20000)
		reservation.Entry.TransactionType = models.TxPayout

		store := New(mockClient, testTables)
		err := store.CreatePayout(context.Background(), &models.Payout{Id: "payout-1", Amount: 20000, Reserved: true}, &reservation)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Reservation Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled("None", "None", "ConditionalCheckFailed"))

		reservation := bonusPosting("companion-1", 4, 50000, -20000)

		store := New(mockClient, testTables)
		err := store.CreatePayout(context.Background(), &models.Payout{Id: "payout-1"}, &reservation)

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
		mockClient.AssertExpectations(t)
	})

	t.Run("Duplicate ID", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, testTables)
		err := store.CreatePayout(context.Background(), &models.Payout{Id: "payout-1"}, nil)

		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		mockClient.AssertExpectations(t)
	})
}
