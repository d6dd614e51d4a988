package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

// itemKind records what a TransactWriteItem guards so that a cancellation
// reason can be mapped back to the right sentinel error.
type itemKind int

const (
	kindLedger itemKind = iota
	kindTransition
	kindCreate
)

// CommitLedger appends the postings, moves the cached balances and applies the
// transitions in one TransactWriteItems call.
//
// Each posting is guarded twice: the entry is put with attribute_not_exists on
// its (user_id, sequence) key and the user's ledger_version must still be the
// previous sequence. Losing either condition means another writer appended
// first and the caller should re-read the tip.
func (s *Store) CommitLedger(ctx context.Context, postings []storage.Posting, transitions []storage.Transition) error {
	if len(postings) == 0 && len(transitions) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var items []types.TransactWriteItem
	var kinds []itemKind

	seen := make(map[string]bool, len(postings))
	for _, p := range postings {
		if seen[p.Entry.UserId] {
			return fmt.Errorf("failed to commit ledger: user %s posted twice in one commit", p.Entry.UserId)
		}
		seen[p.Entry.UserId] = true

		postingItems, err := s.postingItems(p, now)
		if err != nil {
			return err
		}
		items = append(items, postingItems...)
		kinds = append(kinds, kindLedger, kindLedger)
	}

	for _, t := range transitions {
		update, err := s.transitionUpdate(t, now)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Update: update})
		kinds = append(kinds, kindTransition)
	}

	return s.transactWrite(ctx, items, kinds)
}

// ApplyTransition applies a single conditional status change.
func (s *Store) ApplyTransition(ctx context.Context, t storage.Transition) error {
	update, err := s.transitionUpdate(t, time.Now().UTC())
	if err != nil {
		return err
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           update.TableName,
		Key:                                 update.Key,
		UpdateExpression:                    update.UpdateExpression,
		ConditionExpression:                 update.ConditionExpression,
		ExpressionAttributeNames:            update.ExpressionAttributeNames,
		ExpressionAttributeValues:           update.ExpressionAttributeValues,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			if condCheckFailed.Item == nil {
				return storage.ErrNotFound
			}
			return storage.ErrConditionFailed
		}
		return fmt.Errorf("failed to apply %s transition: %w", t.Entity, err)
	}
	return nil
}

// postingItems builds the ledger put and the cached balance update of a posting.
func (s *Store) postingItems(p storage.Posting, now time.Time) ([]types.TransactWriteItem, error) {
	entry := p.Entry
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entryAV, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger entry: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	return []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Ledger),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			},
		},
		{
			Update: &types.Update{
				TableName: aws.String(s.Tables.Users),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: entry.UserId},
				},
				UpdateExpression:    aws.String("SET wallet_balance = :balance, ledger_version = :seq, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(id) AND (attribute_not_exists(ledger_version) OR ledger_version = :prev)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":balance": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", entry.BalanceAfter)},
					":seq":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", entry.Sequence)},
					":prev":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", entry.Sequence-1)},
					":now":     nowAV,
				},
			},
		},
	}, nil
}

func (s *Store) transitionUpdate(t storage.Transition, now time.Time) (*types.Update, error) {
	table, err := s.tableFor(t.Entity)
	if err != nil {
		return nil, err
	}

	expr := newExpression()
	expr.condition("attribute_exists(id)")
	if t.From != "" {
		if err := expr.equals("status", t.From); err != nil {
			return nil, err
		}
	}
	for _, attr := range sortedKeys(t.Match) {
		if err := expr.equals(attr, t.Match[attr]); err != nil {
			return nil, err
		}
	}
	if t.To != "" {
		if err := expr.set("status", t.To); err != nil {
			return nil, err
		}
	}
	for _, attr := range sortedKeys(t.Set) {
		if err := expr.set(attr, t.Set[attr]); err != nil {
			return nil, err
		}
	}
	if err := expr.set("updated_at", now); err != nil {
		return nil, err
	}
	for _, attr := range t.Remove {
		expr.remove(attr)
	}
	for _, attr := range sortedKeys(t.Add) {
		if err := expr.add(attr, t.Add[attr]); err != nil {
			return nil, err
		}
	}

	return &types.Update{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: t.ID},
		},
		UpdateExpression:          expr.updateExpression(),
		ConditionExpression:       expr.conditionExpression(),
		ExpressionAttributeNames:  expr.attributeNames(),
		ExpressionAttributeValues: expr.attributeValues(),
	}, nil
}

func (s *Store) tableFor(entity storage.Entity) (string, error) {
	switch entity {
	case storage.EntityReferral:
		return s.Tables.Referrals, nil
	case storage.EntityPayout:
		return s.Tables.Payouts, nil
	default:
		return "", fmt.Errorf("unknown entity %q", entity)
	}
}

// transactWrite executes the items and translates a cancellation into the
// storage sentinels. A failed transition wins over a version conflict: the
// record already moved on and retrying against a new tip would not help.
func (s *Store) transactWrite(ctx context.Context, items []types.TransactWriteItem, kinds []itemKind) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}

	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return fmt.Errorf("failed to execute ledger transaction: %w", err)
	}

	var conflict, conditionFailed, exists bool
	for i, reason := range canceled.CancellationReasons {
		if i >= len(kinds) || reason.Code == nil {
			continue
		}
		switch *reason.Code {
		case "ConditionalCheckFailed":
			switch kinds[i] {
			case kindTransition:
				conditionFailed = true
			case kindCreate:
				exists = true
			default:
				conflict = true
			}
		case "TransactionConflict":
			conflict = true
		}
	}

	switch {
	case conditionFailed:
		return storage.ErrConditionFailed
	case exists:
		return storage.ErrAlreadyExists
	case conflict:
		return storage.ErrVersionConflict
	default:
		return fmt.Errorf("ledger transaction cancelled: %w", err)
	}
}
