package repository

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/utils"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

const (
	repFocusAreaIndex = "focusAreaId-index"

	batchGetLimit    = 100
	batchGetAttempts = 3
)

type repRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
}

func NewRepRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string) utils.RepRepository {
	return &repRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
	}
}

func (r *repRepository) GetRep(ctx context.Context, repID string) (*models.Rep, error) {
	result, err := r.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: repID},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get rep from DynamoDB")
		return nil, fmt.Errorf("failed to get rep: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var rep models.Rep
	if err := attributevalue.UnmarshalMap(result.Item, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rep: %w", err)
	}
	return &rep, nil
}

// GetReps loads reps by id, keeping the order of repIDs and skipping ids that no longer exist.
func (r *repRepository) GetReps(ctx context.Context, repIDs []string) ([]models.Rep, error) {
	found := make(map[string]models.Rep, len(repIDs))

	for start := 0; start < len(repIDs); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(repIDs) {
			end = len(repIDs)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		seen := map[string]bool{}
		for _, id := range repIDs[start:end] {
			if seen[id] {
				continue
			}
			seen[id] = true
			keys = append(keys, map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			})
		}

		request := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}
		for attempt := 0; attempt < batchGetAttempts && len(request) > 0; attempt++ {
			result, err := r.dynamodb.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				r.logger.WithError(err).Error("Failed to batch get reps")
				return nil, fmt.Errorf("failed to batch get reps: %w", err)
			}

			var reps []models.Rep
			if err := attributevalue.UnmarshalListOfMaps(result.Responses[r.tableName], &reps); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reps: %w", err)
			}
			for _, rep := range reps {
				found[rep.ID] = rep
			}
			request = result.UnprocessedKeys
		}
		if len(request) > 0 {
			return nil, errors.New("failed to batch get reps: unprocessed keys remain")
		}
	}

	reps := make([]models.Rep, 0, len(found))
	for _, id := range repIDs {
		if rep, ok := found[id]; ok {
			reps = append(reps, rep)
		}
	}
	return reps, nil
}

func (r *repRepository) ListByFocusAreas(ctx context.Context, focusAreaIDs []string) ([]models.Rep, error) {
	var reps []models.Rep
	queried := make(map[string]bool, len(focusAreaIDs))
	for _, focusAreaID := range focusAreaIDs {
		// each area contributes its reps once
		if queried[focusAreaID] {
			continue
		}
		queried[focusAreaID] = true

		paginator := dynamodb.NewQueryPaginator(r.dynamodb, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(repFocusAreaIndex),
			KeyConditionExpression: aws.String("focusAreaId = :focusAreaId"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":focusAreaId": &types.AttributeValueMemberS{Value: focusAreaID},
			},
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				r.logger.WithError(err).Error("Failed to query reps by focus area")
				return nil, fmt.Errorf("failed to query reps: %w", err)
			}

			var batch []models.Rep
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reps: %w", err)
			}
			reps = append(reps, batch...)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"focusAreas": focusAreaIDs,
		"count":      len(reps),
	}).Debug("Loaded rep catalog")

	return reps, nil
}

// SaveRep inserts a new rep. Existing reps are never overwritten.
func (r *repRepository) SaveRep(ctx context.Context, rep *models.Rep) error {
	if rep.CreatedAt == "" {
		rep.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	item, err := attributevalue.MarshalMap(rep)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal rep")
		return fmt.Errorf("failed to marshal rep: %w", err)
	}

	_, err = r.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to save rep to DynamoDB")
		return fmt.Errorf("failed to save rep: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"repId":      rep.ID,
		"focusArea":  rep.FocusAreaID,
		"format":     rep.Format,
		"difficulty": rep.DifficultyLevel,
	}).Info("Successfully saved rep")
	return nil
}
