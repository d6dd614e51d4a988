package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/wallet-payout-engine/pkg/models"
)

// GetLedgerTip reads the newest entry of a user's ledger with a strongly consistent query.
func (s *Store) GetLedgerTip(ctx context.Context, userID string) (*models.LedgerTip, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger tip: %w", err)
	}

	tip := &models.LedgerTip{UserId: userID}
	if len(result.Items) == 0 {
		return tip, nil
	}

	var entry models.WalletTransaction
	if err := attributevalue.UnmarshalMap(result.Items[0], &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger tip: %w", err)
	}
	tip.Sequence = entry.Sequence
	tip.Balance = entry.BalanceAfter
	return tip, nil
}

// ListLedgerEntries returns a user's full ledger in sequence order.
func (s *Store) ListLedgerEntries(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	items, err := s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}

	var entries []models.WalletTransaction
	if err := attributevalue.UnmarshalListOfMaps(items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}
	return entries, nil
}

// ListLedgerEntriesByReference returns the entries written for a referral or payout.
func (s *Store) ListLedgerEntriesByReference(ctx context.Context, referenceID string) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	if err := s.queryIndexEq(ctx, s.Tables.Ledger, referenceIDIndex, "reference_id", referenceID, &entries); err != nil {
		return nil, fmt.Errorf("failed to list ledger entries by reference: %w", err)
	}
	return entries, nil
}
