package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"daily-rep/internal/utils"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type BatchStatus string

const (
	BatchSuccess BatchStatus = "success"
	BatchSkipped BatchStatus = "skipped"
	BatchError   BatchStatus = "error"
)

const reasonAlreadyAssigned = "already_has_rep"

type BatchResult struct {
	UserID   string      `json:"userId"`
	Status   BatchStatus `json:"status"`
	Reason   string      `json:"reason,omitempty"`
	RepID    string      `json:"repId,omitempty"`
	RepTitle string      `json:"repTitle,omitempty"`
}

type BatchReport struct {
	Date          string        `json:"date"`
	Hour          *int          `json:"hour,omitempty"`
	TotalUsers    int           `json:"totalUsers"`
	AssignedCount int           `json:"assignedCount"`
	Results       []BatchResult `json:"results"`
}

// AssignDaily gives every user with focus areas and no rep yet today a rep from the catalog.
func (s *Service) AssignDaily(ctx context.Context) (*BatchReport, error) {
	profiles, err := s.profiles.ListProfiles(ctx, utils.ProfileFilter{HasFocusAreas: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return s.runBatch(ctx, profiles, StrategyCatalog, nil), nil
}

// AutoGenerate generates a rep for users who opted in and whose delivery hour is the current
// UTC hour.
func (s *Service) AutoGenerate(ctx context.Context) (*BatchReport, error) {
	hour := s.now().UTC().Hour()
	profiles, err := s.profiles.ListProfiles(ctx, utils.ProfileFilter{
		AutoGenerate: true,
		DeliveryHour: &hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return s.runBatch(ctx, profiles, StrategyGenerative, &hour), nil
}

// runBatch processes users independently with bounded parallelism. One user's failure is
// recorded in its result and never stops the others.
func (s *Service) runBatch(ctx context.Context, profiles []models.UserProfile, strategy Strategy, hour *int) *BatchReport {
	today := s.Today()
	results := make([]BatchResult, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range profiles {
		g.Go(func() error {
			results[i] = s.assignOne(gctx, &profiles[i], strategy, today)
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{
		Date:       today,
		Hour:       hour,
		TotalUsers: len(profiles),
		Results:    results,
	}
	for _, r := range results {
		if r.Status == BatchSuccess {
			report.AssignedCount++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"date":          today,
		"strategy":      strategy,
		"totalUsers":    report.TotalUsers,
		"assignedCount": report.AssignedCount,
	}).Info("Batch finished")
	return report
}

func (s *Service) assignOne(ctx context.Context, profile *models.UserProfile, strategy Strategy, today string) BatchResult {
	logger := s.logger.WithField("userId", profile.UserID)
	result := BatchResult{UserID: profile.UserID}

	existing, err := s.assignments.Get(ctx, profile.UserID, today)
	if err != nil {
		logger.WithError(err).Error("Failed to check today's assignment")
		result.Status = BatchError
		result.Reason = err.Error()
		return result
	}
	if existing != nil {
		result.Status = BatchSkipped
		result.Reason = reasonAlreadyAssigned
		return result
	}

	res, err := s.assignFor(ctx, profile, strategy, today)
	if err != nil {
		switch kind := reperr.KindOf(err); kind {
		case reperr.KindWeeklyLimitReached, reperr.KindNoFocusAreas, reperr.KindNoEligibleReps:
			result.Status = BatchSkipped
			result.Reason = string(kind)
		default:
			logger.WithError(err).Error("Failed to assign rep")
			result.Status = BatchError
			result.Reason = err.Error()
		}
		return result
	}

	result.Status = BatchSuccess
	result.RepID = res.Rep.ID
	result.RepTitle = res.Rep.Title
	return result
}
