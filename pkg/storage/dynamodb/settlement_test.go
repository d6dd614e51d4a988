package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
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

func bonusPosting(userID string, seq, before, amount int64) storage.Posting {
	return storage.Posting{Entry: models.WalletTransaction{
		UserId:          userID,
		Sequence:        seq,
		Id:              userID + "-entry",
		TransactionType: models.TxReferralBonus,
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    before + amount,
		ReferenceId:     "user_referral#referee",
		ReferenceType:   models.RefReferral,
		Status:          models.EntryStatusCompleted,
	}}
}

func rewardTransition() storage.Transition {
	return storage.Transition{
		Entity: storage.EntityReferral,
		ID:     "user_referral#referee",
		From:   string(models.ReferralCompleted),
		To:     string(models.ReferralRewarded),
	}
}

func canceled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, code := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func TestCommitLedger(t *testing.T) {
	postings := []storage.Posting{
		bonusPosting("referrer", 3, 5000, 10000),
		bonusPosting("referee", 1, 0, 10000),
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		var captured *dynamodb.TransactWriteItemsInput
		mockClient.On("TransactWriteItems", mock.Anything, mock.AnythingOfType("*dynamodb.TransactWriteItemsInput")).
			Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
			Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		store := New(mockClient, testTables)
		err := store.CommitLedger(context.Background(), postings, []storage.Transition{rewardTransition()})

		require.NoError(t, err)
		require.Len(t, captured.TransactItems, 5)

		put := captured.TransactItems[0].Put
		require.NotNil(t, put)
		assert.Equal(t, "ledger", *put.TableName)
		assert.Equal(t, "attribute_not_exists(user_id)", *put.ConditionExpression)
		var entry models.WalletTransaction
		require.NoError(t, attributevalue.UnmarshalMap(put.Item, &entry))
		assert.Equal(t, int64(3), entry.Sequence)
		assert.Equal(t, int64(15000), entry.BalanceAfter)

		balance := captured.TransactItems[1].Update
		require.NotNil(t, balance)
		assert.Equal(t, "users", *balance.TableName)
		assert.Equal(t, "15000", balance.ExpressionAttributeValues[":balance"].(*types.AttributeValueMemberN).Value)
		assert.Equal(t, "2", balance.ExpressionAttributeValues[":prev"].(*types.AttributeValueMemberN).Value)

		transition := captured.TransactItems[4].Update
		require.NotNil(t, transition)
		assert.Equal(t, "referrals", *transition.TableName)
		assert.Equal(t, "attribute_exists(id) AND #n0 = :v0", *transition.ConditionExpression)
		assert.Equal(t, "status", transition.ExpressionAttributeNames["#n0"])
		mockClient.AssertExpectations(t)
	})

	t.Run("Version Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled("ConditionalCheckFailed", "None", "None", "None", "None"))

		store := New(mockClient, testTables)
		err := store.CommitLedger(context.Background(), postings, []storage.Transition{rewardTransition()})

		assert.ErrorIs(t, err, storage.ErrVersionConflict)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transition Condition Failed", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled("None", "ConditionalCheckFailed", "None", "None", "ConditionalCheckFailed"))

		store := New(mockClient, testTables)
		err := store.CommitLedger(context.Background(), postings, []storage.Transition{rewardTransition()})

		assert.ErrorIs(t, err, storage.ErrConditionFailed)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("transaction failed"))

		store := New(mockClient, testTables)
		err := store.CommitLedger(context.Background(), postings, nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute ledger transaction")
		mockClient.AssertExpectations(t)
	})

	t.Run("Same User Twice", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)

		store := New(mockClient, testTables)
		err := store.CommitLedger(context.Background(), []storage.Posting{
			bonusPosting("referrer", 1, 0, 100),
			bonusPosting("referrer", 2, 100, 100),
		}, nil)

		assert.Error(t, err)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})
}

func TestApplyTransition(t *testing.T) {
	claim := storage.Transition{
		Entity: storage.EntityPayout,
		ID:     "payout-1",
		From:   string(models.PayoutPending),
		To:     string(models.PayoutProcessing),
		Set:    map[string]interface{}{"claim_id": "claim-1"},
		Remove: []string{"rejection_reason"},
		Add:    map[string]int64{"attempts": 1},
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			return *in.TableName == "payouts" &&
				*in.ConditionExpression == "attribute_exists(id) AND #n0 = :v0" &&
				*in.UpdateExpression == "SET #n0 = :v1, #n1 = :v2, #n2 = :v3 REMOVE #n3 ADD #n4 :v4" &&
				in.ExpressionAttributeNames["#n1"] == "claim_id" &&
				in.ExpressionAttributeNames["#n4"] == "attempts"
		})).Return(&dynamodb.UpdateItemOutput{}, nil)

		store := New(mockClient, testTables)
		assert.NoError(t, store.ApplyTransition(context.Background(), claim))
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Claimed", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		existing, _ := attributevalue.MarshalMap(models.Payout{Id: "payout-1", Status: models.PayoutProcessing})
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{Item: existing})

		store := New(mockClient, testTables)
		err := store.ApplyTransition(context.Background(), claim)

		assert.ErrorIs(t, err, storage.ErrConditionFailed)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, testTables)
		err := store.ApplyTransition(context.Background(), claim)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unknown Entity", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)

		store := New(mockClient, testTables)
		err := store.ApplyTransition(context.Background(), storage.Transition{Entity: "wallet", ID: "x"})

		assert.Error(t, err)
		mockClient.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})
}
