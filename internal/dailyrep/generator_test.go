package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyFor(title string) string {
	return fmt.Sprintf(`{"title": %q, "description": "Do it today.", "difficulty_level": "Beginner", "estimated_time": 5, "focus_area": "Fitness"}`, title)
}

func newTestGenerator(t *testing.T, store *memStore, llm *scriptedLLM) *RepGenerator {
	t.Helper()
	gen, err := NewRepGenerator(testLogger(), llm, store, store, testGeneratorConfig(t))
	require.NoError(t, err)
	return gen
}

func TestBuildPrompt(t *testing.T) {
	store := newMemStore()
	gen := newTestGenerator(t, store, &scriptedLLM{replies: []string{replyFor("x")}})
	catalog := models.NewFocusAreaCatalog(store.areas)

	profile := &models.UserProfile{
		UserID:     "u1",
		Name:       "Sam",
		Age:        34,
		JobTitle:   "Nurse",
		FocusAreas: []string{"fitness", "career"},
		RepStyle:   "Standard [15-20 min]",
	}
	history := []models.Rep{{Title: "Morning stretch", Description: "Five minutes."}}

	req, err := gen.BuildPrompt(profile, history, catalog)
	require.NoError(t, err)
	assert.Contains(t, req.SystemPrompt, "one of: Fitness, Career")
	assert.Contains(t, req.UserPrompt, "Name: Sam")
	assert.Contains(t, req.UserPrompt, "Age: 34")
	assert.Contains(t, req.UserPrompt, "Gender: Not specified")
	assert.Contains(t, req.UserPrompt, "Current level: Beginner")
	assert.Contains(t, req.UserPrompt, "Preferred duration: Standard [15-20 min]")
	assert.Contains(t, req.UserPrompt, "1. Morning stretch - Five minutes.")
	assert.InDelta(t, 0.8, req.Temperature, 0.001)
}

func TestBuildPromptCapsHistory(t *testing.T) {
	store := newMemStore()
	cfg := testGeneratorConfig(t)
	cfg.HistoryWindow = 3
	gen, err := NewRepGenerator(testLogger(), &scriptedLLM{}, store, store, cfg)
	require.NoError(t, err)

	var history []models.Rep
	for i := 1; i <= 10; i++ {
		history = append(history, models.Rep{Title: fmt.Sprintf("Rep %d", i)})
	}

	req, err := gen.BuildPrompt(&models.UserProfile{FocusAreas: []string{"fitness"}}, history, nil)
	require.NoError(t, err)
	assert.Contains(t, req.UserPrompt, "3. Rep 3")
	assert.NotContains(t, req.UserPrompt, "Rep 4")
}

func TestGeneratePersistsRep(t *testing.T) {
	store := newMemStore()
	llm := &scriptedLLM{replies: []string{"```json\n" + replyFor("Ten squats every hour") + "\n```"}}
	gen := newTestGenerator(t, store, llm)
	profile := &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}

	rep, err := gen.Generate(context.Background(), profile, nil, models.NewFocusAreaCatalog(store.areas))
	require.NoError(t, err)
	require.NotEmpty(t, rep.ID)

	stored, err := store.GetRep(context.Background(), rep.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ten squats every hour", stored.Title)
	assert.Equal(t, "fitness", stored.FocusAreaID)

	filter, err := store.GetTitleFilter(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, filter.Contains("Ten squats every hour"))
}

func TestGenerateRetriesInvalidReply(t *testing.T) {
	store := newMemStore()
	llm := &scriptedLLM{replies: []string{"not json at all", replyFor("Walk to work")}}
	gen := newTestGenerator(t, store, llm)

	rep, err := gen.Generate(context.Background(), &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Walk to work", rep.Title)
	assert.Equal(t, 2, llm.calls())
}

func TestGenerateGivesUpOnInvalidReplies(t *testing.T) {
	store := newMemStore()
	llm := &scriptedLLM{replies: []string{"nope"}}
	gen := newTestGenerator(t, store, llm)

	_, err := gen.Generate(context.Background(), &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}, nil, nil)
	assert.ErrorIs(t, err, reperr.ErrInvalidGenerationResponse)
	assert.Equal(t, testGeneratorConfig(t).MaxAttempts, llm.calls())
	assert.Empty(t, store.reps)
}

func TestGenerateAvoidsRepeatedTitles(t *testing.T) {
	store := newMemStore()
	llm := &scriptedLLM{replies: []string{replyFor("Morning stretch"), replyFor("Evening walk")}}
	gen := newTestGenerator(t, store, llm)
	history := []models.Rep{{ID: "old", Title: "Morning Stretch"}}

	rep, err := gen.Generate(context.Background(), &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}, history, nil)
	require.NoError(t, err)
	assert.Equal(t, "Evening walk", rep.Title)
}

func TestGenerateUsesTitleFilterBeyondHistory(t *testing.T) {
	store := newMemStore()
	old := models.NewTitleFilter("u1")
	old.Add("Cold shower")
	store.filters["u1"] = old

	llm := &scriptedLLM{replies: []string{replyFor("Cold shower"), replyFor("Cold shower")}}
	gen := newTestGenerator(t, store, llm)

	rep, err := gen.Generate(context.Background(), &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}, nil, nil)
	require.NoError(t, err)
	// every attempt repeated, so the last parsed rep is kept
	assert.Equal(t, "Cold shower", rep.Title)
	assert.Equal(t, 2, llm.calls())
}

func TestGenerateDoesNotRetryTransportErrors(t *testing.T) {
	for _, kind := range []reperr.Kind{reperr.KindGenerationRateLimited, reperr.KindGenerationPaymentRequired, reperr.KindGenerationTimeout} {
		t.Run(string(kind), func(t *testing.T) {
			store := newMemStore()
			llm := &scriptedLLM{err: reperr.New(kind, "upstream")}
			gen := newTestGenerator(t, store, llm)

			_, err := gen.Generate(context.Background(), &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}, nil, nil)
			assert.Equal(t, kind, reperr.KindOf(err))
			assert.Equal(t, 1, llm.calls())
		})
	}

	store := newMemStore()
	llm := &scriptedLLM{err: errors.New("connection reset")}
	gen := newTestGenerator(t, store, llm)
	_, err := gen.Generate(context.Background(), &models.UserProfile{UserID: "u1", FocusAreas: []string{"fitness"}}, nil, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection reset"))
	assert.Equal(t, reperr.Kind(""), reperr.KindOf(err))
}

func TestNewRepGeneratorValidates(t *testing.T) {
	store := newMemStore()
	_, err := NewRepGenerator(testLogger(), nil, store, store, testGeneratorConfig(t))
	assert.Error(t, err)

	cfg := testGeneratorConfig(t)
	cfg.TimeoutSeconds = 60
	_, err = NewRepGenerator(testLogger(), &scriptedLLM{}, store, store, cfg)
	assert.Error(t, err)

	cfg = testGeneratorConfig(t)
	cfg.UserPrompt = "{{.Name"
	_, err = NewRepGenerator(testLogger(), &scriptedLLM{}, store, store, cfg)
	assert.Error(t, err)
}
