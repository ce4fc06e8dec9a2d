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
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const assignmentIDIndex = "id-index"

// Assignments are keyed by userId (partition) and assignedDate (sort), so a (user, date) pair
// can only ever address one item.
type assignmentRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
	now       func() time.Time
}

func NewAssignmentRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string) utils.AssignmentRepository {
	return &assignmentRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
		now:       time.Now,
	}
}

func (r *assignmentRepository) key(userID, date string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":       &types.AttributeValueMemberS{Value: userID},
		"assignedDate": &types.AttributeValueMemberS{Value: date},
	}
}

// Upsert is a single conditional-free UpdateItem: a concurrent insert and replace for the same
// key serialize on the item, and the last writer's rep wins.
func (r *assignmentRepository) Upsert(ctx context.Context, userID, date, repID string) (*models.DailyRepAssignment, error) {
	now := r.now().UTC().Format(time.RFC3339)

	result, err := r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(userID, date),
		UpdateExpression: aws.String("SET repId = :repId, completed = :false, #status = :pending, updatedAt = :now, " +
			"#id = if_not_exists(#id, :id), createdAt = if_not_exists(createdAt, :now) REMOVE completedAt"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#id":     "id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":repId":   &types.AttributeValueMemberS{Value: repID},
			":false":   &types.AttributeValueMemberBOOL{Value: false},
			":pending": &types.AttributeValueMemberS{Value: string(models.StatusPending)},
			":now":     &types.AttributeValueMemberS{Value: now},
			":id":      &types.AttributeValueMemberS{Value: uuid.NewString()},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to upsert assignment")
		return nil, fmt.Errorf("failed to upsert assignment: %w", err)
	}

	var assignment models.DailyRepAssignment
	if err := attributevalue.UnmarshalMap(result.Attributes, &assignment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"userId":       userID,
		"assignedDate": date,
		"repId":        repID,
	}).Info("Successfully upserted assignment")
	return &assignment, nil
}

func (r *assignmentRepository) Get(ctx context.Context, userID, date string) (*models.DailyRepAssignment, error) {
	result, err := r.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(userID, date),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get assignment from DynamoDB")
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var assignment models.DailyRepAssignment
	if err := attributevalue.UnmarshalMap(result.Item, &assignment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, assignmentID string) (*models.DailyRepAssignment, error) {
	result, err := r.dynamodb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(assignmentIDIndex),
		KeyConditionExpression: aws.String("#id = :id"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: assignmentID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to query assignment by id")
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, nil
	}

	var assignment models.DailyRepAssignment
	if err := attributevalue.UnmarshalMap(result.Items[0], &assignment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.DailyRepAssignment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("userId = :userId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false), // newest date first
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var assignments []models.DailyRepAssignment
	paginator := dynamodb.NewQueryPaginator(r.dynamodb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to query user assignments")
			return nil, fmt.Errorf("failed to query user assignments: %w", err)
		}

		var batch []models.DailyRepAssignment
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assignments: %w", err)
		}
		assignments = append(assignments, batch...)

		if limit > 0 && len(assignments) >= limit {
			assignments = assignments[:limit]
			break
		}
	}

	return assignments, nil
}

func (r *assignmentRepository) SetStatus(ctx context.Context, userID, date string, status models.AssignmentStatus, completedAt string) (*models.DailyRepAssignment, error) {
	update := "SET #status = :status, completed = :completed, updatedAt = :now"
	values := map[string]types.AttributeValue{
		":status":    &types.AttributeValueMemberS{Value: string(status)},
		":completed": &types.AttributeValueMemberBOOL{Value: status == models.StatusCompleted},
		":now":       &types.AttributeValueMemberS{Value: r.now().UTC().Format(time.RFC3339)},
	}
	if completedAt != "" {
		update += ", completedAt = :completedAt"
		values[":completedAt"] = &types.AttributeValueMemberS{Value: completedAt}
	} else {
		update += " REMOVE completedAt"
	}

	result, err := r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(userID, date),
		UpdateExpression:    aws.String(update),
		ConditionExpression: aws.String("attribute_exists(userId)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, nil
		}
		r.logger.WithError(err).Error("Failed to update assignment status")
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	var assignment models.DailyRepAssignment
	if err := attributevalue.UnmarshalMap(result.Attributes, &assignment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"userId":       userID,
		"assignedDate": date,
		"status":       status,
	}).Info("Successfully updated assignment status")
	return &assignment, nil
}
