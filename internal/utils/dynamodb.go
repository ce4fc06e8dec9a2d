package utils

import (
	"context"
	"daily-rep/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDbAPI defines the DynamoDB operations needed by our application
type DynamoDbAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

// ProfileFilter narrows a profile scan. Zero values mean "any".
type ProfileFilter struct {
	AutoGenerate  bool
	DeliveryHour  *int
	HasFocusAreas bool
}

// ProfileRepository defines profile-related database operations
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]models.UserProfile, error)
	// ClaimFreeRep sets lastFreeRepDate to today only when the previous claim is at least
	// minDays old. It returns false when another claim won.
	ClaimFreeRep(ctx context.Context, userID, today string, minDays int) (bool, error)
	UpdateSettings(ctx context.Context, userID string, settings models.ProfileSettings) (*models.UserProfile, error)
	UpdateStreak(ctx context.Context, userID string, current, longest int, lastCompletedDate string) error
	GetTitleFilter(ctx context.Context, userID string) (*models.TitleFilter, error)
	SaveTitleFilter(ctx context.Context, filter *models.TitleFilter) error
}

// RepRepository defines rep catalog operations
type RepRepository interface {
	GetRep(ctx context.Context, repID string) (*models.Rep, error)
	GetReps(ctx context.Context, repIDs []string) ([]models.Rep, error)
	ListByFocusAreas(ctx context.Context, focusAreaIDs []string) ([]models.Rep, error)
	SaveRep(ctx context.Context, rep *models.Rep) error
}

// AssignmentRepository defines daily assignment operations
type AssignmentRepository interface {
	// Upsert writes the single assignment for (userID, date), replacing its rep and resetting
	// completion when one already exists.
	Upsert(ctx context.Context, userID, date, repID string) (*models.DailyRepAssignment, error)
	Get(ctx context.Context, userID, date string) (*models.DailyRepAssignment, error)
	GetByID(ctx context.Context, assignmentID string) (*models.DailyRepAssignment, error)
	// ListByUser returns the user's assignments, newest first. limit <= 0 means all.
	ListByUser(ctx context.Context, userID string, limit int) ([]models.DailyRepAssignment, error)
	SetStatus(ctx context.Context, userID, date string, status models.AssignmentStatus, completedAt string) (*models.DailyRepAssignment, error)
}

// FocusAreaRepository defines focus area reference data operations
type FocusAreaRepository interface {
	ListFocusAreas(ctx context.Context) ([]models.FocusArea, error)
	SaveFocusArea(ctx context.Context, area *models.FocusArea) error
}
