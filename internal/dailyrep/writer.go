package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// UpsertAssignment writes the single assignment for (userID, date). The store applies it as
// one atomic update, so a second call for the same day replaces the rep and resets completion
// instead of adding a row.
func (s *Service) UpsertAssignment(ctx context.Context, userID, date, repID string) (*models.DailyRepAssignment, error) {
	assignment, err := s.assignments.Upsert(ctx, userID, date, repID)
	if err != nil {
		return nil, fmt.Errorf("failed to write assignment: %w", err)
	}
	return assignment, nil
}

// Complete marks the user's assignment done and advances the streak.
func (s *Service) Complete(ctx context.Context, userID, assignmentID string) (*models.DailyRepAssignment, error) {
	current, err := s.ownedAssignment(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusCompleted {
		return current, nil
	}

	completedAt := s.now().UTC().Format(time.RFC3339)
	updated, err := s.assignments.SetStatus(ctx, userID, current.AssignedDate, models.StatusCompleted, completedAt)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, reperr.New(reperr.KindAssignmentNotFound, "assignment %s not found", assignmentID)
	}

	if err := s.recordCompletion(ctx, userID, current.AssignedDate); err != nil {
		s.logger.WithError(err).WithField("userId", userID).Warn("Failed to update streak")
	}

	s.logger.WithFields(logrus.Fields{
		"userId":       userID,
		"assignmentId": assignmentID,
	}).Info("Assignment completed")
	return updated, nil
}

// Skip marks the user's assignment skipped. A skipped assignment is not a completion.
func (s *Service) Skip(ctx context.Context, userID, assignmentID string) (*models.DailyRepAssignment, error) {
	current, err := s.ownedAssignment(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusSkipped {
		return current, nil
	}

	updated, err := s.assignments.SetStatus(ctx, userID, current.AssignedDate, models.StatusSkipped, "")
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, reperr.New(reperr.KindAssignmentNotFound, "assignment %s not found", assignmentID)
	}

	s.logger.WithFields(logrus.Fields{
		"userId":       userID,
		"assignmentId": assignmentID,
	}).Info("Assignment skipped")
	return updated, nil
}

// ownedAssignment loads an assignment and hides those of other users. Today's row is read from
// the table first: the id index is eventually consistent and may not have a rep generated a
// moment ago yet.
func (s *Service) ownedAssignment(ctx context.Context, userID, assignmentID string) (*models.DailyRepAssignment, error) {
	today, err := s.assignments.Get(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}
	if today != nil && today.ID == assignmentID {
		return today, nil
	}

	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.UserID != userID {
		return nil, reperr.New(reperr.KindAssignmentNotFound, "assignment %s not found", assignmentID)
	}
	return a, nil
}
