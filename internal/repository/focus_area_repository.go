package repository

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/utils"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

type focusAreaRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
}

func NewFocusAreaRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string) utils.FocusAreaRepository {
	return &focusAreaRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
	}
}

func (r *focusAreaRepository) ListFocusAreas(ctx context.Context) ([]models.FocusArea, error) {
	var areas []models.FocusArea
	paginator := dynamodb.NewScanPaginator(r.dynamodb, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan focus areas")
			return nil, fmt.Errorf("failed to scan focus areas: %w", err)
		}

		var batch []models.FocusArea
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal focus areas: %w", err)
		}
		areas = append(areas, batch...)
	}
	return areas, nil
}

func (r *focusAreaRepository) SaveFocusArea(ctx context.Context, area *models.FocusArea) error {
	if area.ID == "" {
		area.ID = models.FocusAreaID(area.Title)
	}

	item, err := attributevalue.MarshalMap(area)
	if err != nil {
		return fmt.Errorf("failed to marshal focus area: %w", err)
	}

	_, err = r.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to save focus area to DynamoDB")
		return fmt.Errorf("failed to save focus area: %w", err)
	}

	r.logger.WithField("focusAreaId", area.ID).Info("Successfully saved focus area")
	return nil
}
