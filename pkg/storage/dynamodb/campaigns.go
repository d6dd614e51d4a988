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
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

// GetCampaign retrieves a campaign by its normalised code.
func (s *Store) GetCampaign(ctx context.Context, code string) (*models.CampaignReferral, error) {
	var campaign models.CampaignReferral
	if err := s.getItem(ctx, s.Tables.Campaigns, "code", code, &campaign); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

// ListCampaigns scans the campaigns table. The table is small, one item per campaign.
func (s *Store) ListCampaigns(ctx context.Context) ([]models.CampaignReferral, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.Tables.Campaigns),
	}

	var items []map[string]types.AttributeValue
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaigns table: %w", err)
		}
		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	var campaigns []models.CampaignReferral
	if err := attributevalue.UnmarshalListOfMaps(items, &campaigns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaigns: %w", err)
	}
	return campaigns, nil
}

// CreateCampaign creates a campaign unless the code is taken.
func (s *Store) CreateCampaign(ctx context.Context, campaign *models.CampaignReferral) error {
	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now
	if err := s.putNew(ctx, s.Tables.Campaigns, "code", campaign); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// IncrementCampaignStats atomically adds to the signup counters.
func (s *Store) IncrementCampaignStats(ctx context.Context, code string, delta storage.CampaignStats) error {
	return s.updateCampaignStats(ctx, code, "ADD total_signups :signups, total_companions :companions, total_seekers :seekers SET updated_at = :now", delta)
}

// SetCampaignStats overwrites the signup counters.
func (s *Store) SetCampaignStats(ctx context.Context, code string, stats storage.CampaignStats) error {
	return s.updateCampaignStats(ctx, code, "SET total_signups = :signups, total_companions = :companions, total_seekers = :seekers, updated_at = :now", stats)
}

func (s *Store) updateCampaignStats(ctx context.Context, code, updateExpression string, stats storage.CampaignStats) error {
	now, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Campaigns),
		Key:                 map[string]types.AttributeValue{"code": &types.AttributeValueMemberS{Value: code}},
		UpdateExpression:    aws.String(updateExpression),
		ConditionExpression: aws.String("attribute_exists(code)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":signups":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", stats.Signups)},
			":companions": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", stats.Companions)},
			":seekers":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", stats.Seekers)},
			":now":        now,
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to update campaign stats: %w", err)
	}
	return nil
}
