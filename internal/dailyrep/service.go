// Package dailyrep decides, for a user and a day, whether a rep may be given, which rep it is,
// and records the single assignment for that day.
package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"daily-rep/internal/utils"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Strategy string

const (
	StrategyCatalog    Strategy = "catalog"
	StrategyGenerative Strategy = "generative"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyCatalog:
		return StrategyCatalog, nil
	case StrategyGenerative, "":
		return StrategyGenerative, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Notifier tells a user that a new rep is waiting. Delivery is best effort.
type Notifier interface {
	NotifyNewRep(ctx context.Context, userID, repID, title string) error
}

type Dependencies struct {
	Profiles    utils.ProfileRepository
	Reps        utils.RepRepository
	Assignments utils.AssignmentRepository
	FocusAreas  utils.FocusAreaRepository
	// Generator is nil when no text generator is configured; the generative strategy is then
	// unavailable.
	Generator *RepGenerator
	Selector  *Selector
	Notifier  Notifier
}

type Options struct {
	// Concurrency bounds how many users a batch processes at once.
	Concurrency int
	Now         func() time.Time
}

type Service struct {
	logger      *logrus.Entry
	profiles    utils.ProfileRepository
	reps        utils.RepRepository
	assignments utils.AssignmentRepository
	focusAreas  utils.FocusAreaRepository
	generator   *RepGenerator
	selector    *Selector
	notifier    Notifier
	concurrency int
	now         func() time.Time
}

func NewService(logger *logrus.Entry, deps Dependencies, opts Options) *Service {
	if deps.Selector == nil {
		deps.Selector = NewSelector(nil)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		logger:      logger,
		profiles:    deps.Profiles,
		reps:        deps.Reps,
		assignments: deps.Assignments,
		focusAreas:  deps.FocusAreas,
		generator:   deps.Generator,
		selector:    deps.Selector,
		notifier:    deps.Notifier,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
}

// Result is the outcome of a successful allocation.
type Result struct {
	Assignment *models.DailyRepAssignment `json:"assignment"`
	Rep        *models.Rep                `json:"rep"`
	FocusArea  string                     `json:"focusArea,omitempty"`
	Access     Access                     `json:"access,omitempty"`
	// Fallback is set when the catalog strategy had to reuse a rep.
	Fallback bool `json:"fallback,omitempty"`
}

// Today returns the current UTC date.
func (s *Service) Today() string {
	return models.DateOf(s.now())
}

// Generate produces a fresh rep for today and makes it the user's assignment, replacing any
// rep already assigned today.
func (s *Service) Generate(ctx context.Context, userID string) (*Result, error) {
	return s.Assign(ctx, userID, StrategyGenerative)
}

// Assign runs gate, selection and write for one user with the given strategy.
func (s *Service) Assign(ctx context.Context, userID string, strategy Strategy) (*Result, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.assignFor(ctx, profile, strategy, s.Today())
}

func (s *Service) assignFor(ctx context.Context, profile *models.UserProfile, strategy Strategy, today string) (*Result, error) {
	if len(profile.FocusAreas) == 0 {
		return nil, reperr.New(reperr.KindNoFocusAreas, "select at least one focus area")
	}
	if strategy == StrategyGenerative && s.generator == nil {
		return nil, errors.New("generative strategy is not configured")
	}

	eligibility, err := s.gate(ctx, profile, today)
	if err != nil {
		return nil, err
	}

	catalog := s.focusAreaCatalog(ctx)

	var rep *models.Rep
	var fallback bool
	switch strategy {
	case StrategyCatalog:
		rep, fallback, err = s.selectFromCatalog(ctx, profile)
	case StrategyGenerative:
		rep, err = s.generate(ctx, profile, catalog)
	default:
		err = fmt.Errorf("unknown strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}

	assignment, err := s.UpsertAssignment(ctx, profile.UserID, today, rep.ID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, profile.UserID, rep)

	s.logger.WithFields(logrus.Fields{
		"userId":   profile.UserID,
		"date":     today,
		"repId":    rep.ID,
		"strategy": strategy,
		"access":   eligibility.Access,
	}).Info("Assigned daily rep")

	return &Result{
		Assignment: assignment,
		Rep:        rep,
		FocusArea:  catalog.Title(rep.FocusAreaID),
		Access:     eligibility.Access,
		Fallback:   fallback,
	}, nil
}

func (s *Service) selectFromCatalog(ctx context.Context, profile *models.UserProfile) (*models.Rep, bool, error) {
	pool, err := s.reps.ListByFocusAreas(ctx, profile.FocusAreas)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load rep catalog: %w", err)
	}
	history, err := s.assignments.ListByUser(ctx, profile.UserID, 0)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load assignment history: %w", err)
	}

	used := make(map[string]bool, len(history))
	for _, a := range history {
		used[a.RepID] = true
	}
	return s.selector.Pick(profile, pool, used)
}

func (s *Service) generate(ctx context.Context, profile *models.UserProfile, catalog *models.FocusAreaCatalog) (*models.Rep, error) {
	history, err := s.recentReps(ctx, profile.UserID, s.generator.HistoryWindow())
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, profile, history, catalog)
}

// recentReps returns the reps of the user's latest assignments, newest first.
func (s *Service) recentReps(ctx context.Context, userID string, limit int) ([]models.Rep, error) {
	if limit <= 0 {
		return nil, nil
	}
	history, err := s.assignments.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment history: %w", err)
	}

	ids := make([]string, 0, len(history))
	seen := make(map[string]bool, len(history))
	for _, a := range history {
		if seen[a.RepID] {
			continue
		}
		seen[a.RepID] = true
		ids = append(ids, a.RepID)
	}

	reps, err := s.reps.GetReps(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load rep history: %w", err)
	}
	return reps, nil
}

func (s *Service) focusAreaCatalog(ctx context.Context) *models.FocusAreaCatalog {
	areas, err := s.focusAreas.ListFocusAreas(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load focus areas, titles will not be resolved")
	}
	return models.NewFocusAreaCatalog(areas)
}

func (s *Service) notify(ctx context.Context, userID string, rep *models.Rep) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewRep(ctx, userID, rep.ID, rep.Title); err != nil {
		s.logger.WithError(reperr.Wrap(reperr.KindNotificationFailed, err, "new rep notification")).
			WithField("userId", userID).
			Warn("Failed to send notification, but rep was assigned")
	}
}

func (s *Service) loadProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, reperr.New(reperr.KindProfileNotFound, "no profile for user %s", userID)
	}
	return profile, nil
}

// TodaysRep returns the user's assignment for today with its rep.
func (s *Service) TodaysRep(ctx context.Context, userID string) (*Result, error) {
	assignment, err := s.assignments.Get(ctx, userID, s.Today())
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, reperr.New(reperr.KindAssignmentNotFound, "no rep assigned for today")
	}

	rep, err := s.reps.GetRep(ctx, assignment.RepID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("rep %s of assignment %s is missing", assignment.RepID, assignment.ID)
	}

	return &Result{
		Assignment: assignment,
		Rep:        rep,
		FocusArea:  s.focusAreaCatalog(ctx).Title(rep.FocusAreaID),
	}, nil
}

// UpdateSettings applies a partial settings update. Focus areas may be given by id or title and
// are stored as ids.
func (s *Service) UpdateSettings(ctx context.Context, userID string, settings models.ProfileSettings) (*models.UserProfile, error) {
	if err := settings.Validate(); err != nil {
		return nil, reperr.Wrap(reperr.KindInvalidInput, err, "invalid settings")
	}
	if settings.IsEmpty() {
		return nil, reperr.New(reperr.KindInvalidInput, "no settings to update")
	}

	if settings.FocusAreas != nil {
		ids, unknown := s.focusAreaCatalog(ctx).Normalize(settings.FocusAreas)
		if len(unknown) > 0 {
			return nil, reperr.New(reperr.KindInvalidInput, "unknown focus areas: %s", strings.Join(unknown, ", "))
		}
		if ids == nil {
			ids = []string{}
		}
		settings.FocusAreas = ids
	}
	if settings.CurrentLevel != nil {
		level, _ := models.ParseLevel(string(*settings.CurrentLevel))
		settings.CurrentLevel = &level
	}

	profile, err := s.profiles.UpdateSettings(ctx, userID, settings)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, reperr.New(reperr.KindProfileNotFound, "no profile for user %s", userID)
	}
	return profile, nil
}
