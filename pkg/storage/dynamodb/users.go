package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.getItem(ctx, s.Tables.Users, "id", userID, &user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user through the email GSI.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, emailIndex, "email", strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByReferralCode retrieves the owner of a peer referral code.
func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return s.findUser(ctx, referralCodeIndex, "my_referral_code", models.NormalizeCode(code))
}

func (s *Store) findUser(ctx context.Context, index, attr, value string) (*models.User, error) {
	var users []models.User
	if err := s.queryIndexEq(ctx, s.Tables.Users, index, attr, value, &users); err != nil {
		return nil, fmt.Errorf("failed to find user by %s: %w", attr, err)
	}
	if len(users) == 0 {
		return nil, storage.ErrNotFound
	}
	return &users[0], nil
}

// CreateUser creates a new user record.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.MyReferralCode = models.NormalizeCode(user.MyReferralCode)
	if err := s.putNew(ctx, s.Tables.Users, "id", user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser applies a profile patch. The balance fields are never touched here.
func (s *Store) UpdateUser(ctx context.Context, userID string, patch storage.UserPatch) error {
	sets := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if patch.Name != nil {
		sets["name"] = *patch.Name
	}
	if patch.MyReferralCode != nil {
		sets["my_referral_code"] = models.NormalizeCode(*patch.MyReferralCode)
	}
	if patch.OnboardingCompleted != nil {
		sets["onboarding_completed"] = *patch.OnboardingCompleted
	}

	expr := newExpression()
	for _, name := range sortedKeys(sets) {
		if err := expr.set(name, sets[name]); err != nil {
			return err
		}
	}
	expr.condition("attribute_exists(id)")

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.Tables.Users),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: userID}},
		UpdateExpression:          expr.updateExpression(),
		ConditionExpression:       expr.conditionExpression(),
		ExpressionAttributeNames:  expr.attributeNames(),
		ExpressionAttributeValues: expr.attributeValues(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetCampaignReferralCode records the campaign code on the user unless a different one is already set.
func (s *Store) SetCampaignReferralCode(ctx context.Context, userID, code string) error {
	now, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Users),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: userID}},
		UpdateExpression:    aws.String("SET campaign_referral_code = :code, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND (attribute_not_exists(campaign_referral_code) OR campaign_referral_code = :code)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  now,
		},
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
		return fmt.Errorf("failed to set campaign referral code: %w", err)
	}
	return nil
}
