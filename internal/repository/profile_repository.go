package repository

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/utils"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

type profileRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
}

func NewProfileRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string) utils.ProfileRepository {
	return &profileRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
	}
}

func (r *profileRepository) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	result, err := r.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(userID),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get profile from DynamoDB")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(result.Item, &profile); err != nil {
		r.logger.WithError(err).Error("Failed to unmarshal profile")
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) ListProfiles(ctx context.Context, filter utils.ProfileFilter) ([]models.UserProfile, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}

	var conditions []string
	values := map[string]types.AttributeValue{}
	if filter.AutoGenerate {
		conditions = append(conditions, "autoGenerate = :autoGenerate")
		values[":autoGenerate"] = &types.AttributeValueMemberBOOL{Value: true}
	}
	if filter.DeliveryHour != nil {
		conditions = append(conditions, "preferredDeliveryHour = :hour")
		values[":hour"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", *filter.DeliveryHour)}
	}
	if filter.HasFocusAreas {
		conditions = append(conditions, "size(focusAreas) > :zero")
		values[":zero"] = &types.AttributeValueMemberN{Value: "0"}
	}
	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
		input.ExpressionAttributeValues = values
	}

	var profiles []models.UserProfile
	paginator := dynamodb.NewScanPaginator(r.dynamodb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan profiles")
			return nil, fmt.Errorf("failed to scan profiles: %w", err)
		}

		var batch []models.UserProfile
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
		}
		for _, p := range batch {
			if filter.HasFocusAreas && len(p.FocusAreas) == 0 {
				continue
			}
			profiles = append(profiles, p)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"count":        len(profiles),
		"autoGenerate": filter.AutoGenerate,
	}).Info("Successfully listed profiles")

	return profiles, nil
}

func (r *profileRepository) ClaimFreeRep(ctx context.Context, userID, today string, minDays int) (bool, error) {
	day, err := time.Parse(models.DateLayout, today)
	if err != nil {
		return false, fmt.Errorf("invalid date %q: %w", today, err)
	}
	cutoff := day.AddDate(0, 0, -minDays).Format(models.DateLayout)

	_, err = r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(userID),
		UpdateExpression:    aws.String("SET lastFreeRepDate = :today, updatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(userId) AND (attribute_not_exists(lastFreeRepDate) OR lastFreeRepDate <= :cutoff)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":today":  &types.AttributeValueMemberS{Value: today},
			":cutoff": &types.AttributeValueMemberS{Value: cutoff},
			":now":    &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			r.logger.WithField("userId", userID).Info("Free rep already claimed in this window")
			return false, nil
		}
		r.logger.WithError(err).Error("Failed to claim free rep")
		return false, fmt.Errorf("failed to claim free rep: %w", err)
	}

	return true, nil
}

func (r *profileRepository) UpdateSettings(ctx context.Context, userID string, settings models.ProfileSettings) (*models.UserProfile, error) {
	var sets []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}

	set := func(attr string, v interface{}) error {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", attr, err)
		}
		names["#"+attr] = attr
		values[":"+attr] = av
		sets = append(sets, fmt.Sprintf("#%s = :%s", attr, attr))
		return nil
	}

	fields := []struct {
		attr  string
		value interface{}
		ok    bool
	}{
		{"focusAreas", settings.FocusAreas, settings.FocusAreas != nil},
		{"currentLevel", settings.CurrentLevel, settings.CurrentLevel != nil},
		{"repStyle", settings.RepStyle, settings.RepStyle != nil},
		{"autoGenerate", settings.AutoGenerate, settings.AutoGenerate != nil},
		{"preferredDeliveryHour", settings.PreferredDeliveryHour, settings.PreferredDeliveryHour != nil},
		{"pushEnabled", settings.PushEnabled, settings.PushEnabled != nil},
		{"pushToken", settings.PushToken, settings.PushToken != nil},
		{"webPushSubscription", settings.WebPushSubscription, settings.WebPushSubscription != nil},
		{"lineUserId", settings.LineUserID, settings.LineUserID != nil},
	}
	for _, f := range fields {
		if !f.ok {
			continue
		}
		if err := set(f.attr, f.value); err != nil {
			return nil, err
		}
	}
	sets = append(sets, "updatedAt = :now")

	result, err := r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(userID),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(userId)"),
		ExpressionAttributeNames:  nilIfEmpty(names),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, nil
		}
		r.logger.WithError(err).Error("Failed to update profile settings")
		return nil, fmt.Errorf("failed to update profile settings: %w", err)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(result.Attributes, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	r.logger.WithField("userId", userID).Info("Successfully updated profile settings")
	return &profile, nil
}

func (r *profileRepository) UpdateStreak(ctx context.Context, userID string, current, longest int, lastCompletedDate string) error {
	_, err := r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              r.key(userID),
		UpdateExpression: aws.String("SET currentStreak = :current, longestStreak = :longest, lastCompletedDate = :date, updatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":current": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", current)},
			":longest": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", longest)},
			":date":    &types.AttributeValueMemberS{Value: lastCompletedDate},
			":now":     &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to update streak")
		return fmt.Errorf("failed to update streak: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"userId":  userID,
		"current": current,
		"longest": longest,
	}).Info("Successfully updated streak")
	return nil
}

func (r *profileRepository) GetTitleFilter(ctx context.Context, userID string) (*models.TitleFilter, error) {
	result, err := r.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  r.key(userID),
		ProjectionExpression: aws.String("titleFilter"),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get title filter from DynamoDB")
		return nil, fmt.Errorf("failed to get title filter: %w", err)
	}

	attr, ok := result.Item["titleFilter"]
	if !ok {
		r.logger.Infof("No existing title filter found for user %s, creating new one", userID)
		return models.NewTitleFilter(userID), nil
	}

	var filter models.TitleFilter
	if err := attributevalue.Unmarshal(attr, &filter); err != nil {
		r.logger.WithError(err).Error("Failed to unmarshal title filter")
		return nil, fmt.Errorf("failed to unmarshal title filter: %w", err)
	}
	return &filter, nil
}

func (r *profileRepository) SaveTitleFilter(ctx context.Context, filter *models.TitleFilter) error {
	filter.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	av, err := attributevalue.Marshal(filter)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal title filter")
		return fmt.Errorf("failed to marshal title filter: %w", err)
	}

	_, err = r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(filter.UserID),
		UpdateExpression:    aws.String("SET titleFilter = :filter"),
		ConditionExpression: aws.String("attribute_exists(userId)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":filter": av,
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to save title filter to DynamoDB")
		return fmt.Errorf("failed to save title filter: %w", err)
	}
	return nil
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
