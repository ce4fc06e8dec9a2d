package dailyrep

import (
	"context"
	"daily-rep/internal/config"
	"daily-rep/internal/models"
	"daily-rep/internal/utils"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

// memStore is an in-memory implementation of every repository the service uses.
type memStore struct {
	mu          sync.Mutex
	profiles    map[string]*models.UserProfile
	reps        map[string]models.Rep
	assignments map[string]*models.DailyRepAssignment
	areas       []models.FocusArea
	filters     map[string]*models.TitleFilter

	upserts int
	listErr error

	// staleIndex makes GetByID miss every assignment, like an id index that has not caught up
	staleIndex bool
}

func newMemStore() *memStore {
	return &memStore{
		profiles:    map[string]*models.UserProfile{},
		reps:        map[string]models.Rep{},
		assignments: map[string]*models.DailyRepAssignment{},
		filters:     map[string]*models.TitleFilter{},
		areas: []models.FocusArea{
			{ID: "fitness", Title: "Fitness"},
			{ID: "career", Title: "Career"},
			{ID: "relationships", Title: "Relationships"},
		},
	}
}

func assignmentKey(userID, date string) string { return userID + "|" + date }

func (m *memStore) addProfile(p models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = &p
}

func (m *memStore) addReps(reps ...models.Rep) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range reps {
		m.reps[r.ID] = r
	}
}

func (m *memStore) profile(userID string) models.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.profiles[userID]
}

func (m *memStore) assignmentCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.assignments {
		if a.UserID == userID {
			n++
		}
	}
	return n
}

func (m *memStore) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListProfiles(_ context.Context, filter utils.ProfileFilter) ([]models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.UserProfile
	for _, p := range m.profiles {
		if filter.AutoGenerate && !p.AutoGenerate {
			continue
		}
		if filter.DeliveryHour != nil && (p.PreferredDeliveryHour == nil || *p.PreferredDeliveryHour != *filter.DeliveryHour) {
			continue
		}
		if filter.HasFocusAreas && len(p.FocusAreas) == 0 {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memStore) ClaimFreeRep(_ context.Context, userID, today string, minDays int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return false, nil
	}
	if p.LastFreeRepDate != "" {
		days, err := models.DaysBetween(p.LastFreeRepDate, today)
		if err != nil {
			return false, err
		}
		if days < minDays {
			return false, nil
		}
	}
	p.LastFreeRepDate = today
	return true, nil
}

func (m *memStore) UpdateSettings(_ context.Context, userID string, s models.ProfileSettings) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	if s.FocusAreas != nil {
		p.FocusAreas = s.FocusAreas
	}
	if s.CurrentLevel != nil {
		p.CurrentLevel = *s.CurrentLevel
	}
	if s.AutoGenerate != nil {
		p.AutoGenerate = *s.AutoGenerate
	}
	if s.PreferredDeliveryHour != nil {
		p.PreferredDeliveryHour = s.PreferredDeliveryHour
	}
	if s.PushEnabled != nil {
		p.PushEnabled = *s.PushEnabled
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpdateStreak(_ context.Context, userID string, current, longest int, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID]
	p.CurrentStreak, p.LongestStreak, p.LastCompletedDate = current, longest, date
	return nil
}

func (m *memStore) GetTitleFilter(_ context.Context, userID string) (*models.TitleFilter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.filters[userID]; ok {
		cp := *f
		cp.BitArray = append([]byte(nil), f.BitArray...)
		return &cp, nil
	}
	return models.NewTitleFilter(userID), nil
}

func (m *memStore) SaveTitleFilter(_ context.Context, f *models.TitleFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[f.UserID] = f
	return nil
}

func (m *memStore) GetRep(_ context.Context, repID string) (*models.Rep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reps[repID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) GetReps(_ context.Context, repIDs []string) ([]models.Rep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Rep
	for _, id := range repIDs {
		if r, ok := m.reps[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListByFocusAreas(_ context.Context, ids []string) ([]models.Rep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Rep
	for _, r := range m.reps {
		if want[r.FocusAreaID] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SaveRep(_ context.Context, rep *models.Rep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reps[rep.ID]; ok {
		return errors.New("rep already exists")
	}
	m.reps[rep.ID] = *rep
	return nil
}

func (m *memStore) Upsert(_ context.Context, userID, date, repID string) (*models.DailyRepAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	key := assignmentKey(userID, date)
	a, ok := m.assignments[key]
	if !ok {
		a = &models.DailyRepAssignment{ID: uuid.NewString(), UserID: userID, AssignedDate: date}
		m.assignments[key] = a
	}
	a.RepID = repID
	a.Completed = false
	a.CompletedAt = ""
	a.Status = models.StatusPending
	cp := *a
	return &cp, nil
}

func (m *memStore) Get(_ context.Context, userID, date string) (*models.DailyRepAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[assignmentKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.DailyRepAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staleIndex {
		return nil, nil
	}
	for _, a := range m.assignments {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string, limit int) ([]models.DailyRepAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DailyRepAssignment
	for _, a := range m.assignments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedDate > out[j].AssignedDate })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SetStatus(_ context.Context, userID, date string, status models.AssignmentStatus, completedAt string) (*models.DailyRepAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[assignmentKey(userID, date)]
	if !ok {
		return nil, nil
	}
	a.Status = status
	a.Completed = status == models.StatusCompleted
	a.CompletedAt = completedAt
	cp := *a
	return &cp, nil
}

func (m *memStore) ListFocusAreas(context.Context) ([]models.FocusArea, error) {
	return m.areas, nil
}

func (m *memStore) SaveFocusArea(_ context.Context, area *models.FocusArea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas = append(m.areas, *area)
	return nil
}

// scriptedLLM replays replies in order, repeating the last one.
type scriptedLLM struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []utils.GenerationRequest
}

func (l *scriptedLLM) Generate(_ context.Context, req utils.GenerationRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, req)
	if l.err != nil {
		return "", l.err
	}
	i := len(l.requests) - 1
	if i >= len(l.replies) {
		i = len(l.replies) - 1
	}
	return l.replies[i], nil
}

func (l *scriptedLLM) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

type notification struct {
	userID, repID, title string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) NotifyNewRep(_ context.Context, userID, repID, title string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID, repID, title})
	return n.err
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testGeneratorConfig(t *testing.T) config.Generator {
	t.Helper()
	cfg, err := config.LoadGenerator("")
	require.NoError(t, err)
	return cfg
}

func newTestService(t *testing.T, store *memStore, llm utils.TextGenerator, notifier Notifier) *Service {
	t.Helper()
	deps := Dependencies{
		Profiles:    store,
		Reps:        store,
		Assignments: store,
		FocusAreas:  store,
		Selector:    NewSeededSelector(42),
	}
	if llm != nil {
		gen, err := NewRepGenerator(testLogger(), llm, store, store, testGeneratorConfig(t))
		require.NoError(t, err)
		deps.Generator = gen
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewService(testLogger(), deps, Options{
		Concurrency: 4,
		Now:         func() time.Time { return testNow },
	})
}

func intPtr(v int) *int { return &v }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}
