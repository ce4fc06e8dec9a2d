package models

import "time"

const DateLayout = "2006-01-02"

type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusCompleted AssignmentStatus = "completed"
	StatusSkipped   AssignmentStatus = "skipped"
)

// DailyRepAssignment binds one user to one rep on one calendar date.
// There is at most one assignment per (UserID, AssignedDate).
type DailyRepAssignment struct {
	ID           string           `json:"id" dynamodbav:"id"`
	UserID       string           `json:"userId" dynamodbav:"userId"`
	RepID        string           `json:"repId" dynamodbav:"repId"`
	AssignedDate string           `json:"assignedDate" dynamodbav:"assignedDate"` // YYYY-MM-DD
	Completed    bool             `json:"completed" dynamodbav:"completed"`
	CompletedAt  string           `json:"completedAt,omitempty" dynamodbav:"completedAt,omitempty"` // RFC3339
	Status       AssignmentStatus `json:"status" dynamodbav:"status"`
	CreatedAt    string           `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
	UpdatedAt    string           `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// DateOf truncates t to its UTC calendar date string.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b (both YYYY-MM-DD).
func DaysBetween(a, b string) (int, error) {
	from, err := time.Parse(DateLayout, a)
	if err != nil {
		return 0, err
	}
	to, err := time.Parse(DateLayout, b)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}
