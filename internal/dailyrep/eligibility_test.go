package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trialOver = "2023-12-01T00:00:00Z"

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name      string
		profile   models.UserProfile
		today     string
		allowed   bool
		access    Access
		retryDays int
	}{
		{
			name:    "subscribed ignores a recent free rep",
			profile: models.UserProfile{Subscribed: true, TrialEndsAt: trialOver, LastFreeRepDate: "2024-01-04"},
			today:   "2024-01-05",
			allowed: true,
			access:  AccessSubscribed,
		},
		{
			name:    "trial ending later",
			profile: models.UserProfile{TrialEndsAt: "2024-02-01T00:00:00Z", LastFreeRepDate: "2024-01-04"},
			today:   "2024-01-05",
			allowed: true,
			access:  AccessTrial,
		},
		{
			name:    "trial ends today",
			profile: models.UserProfile{TrialEndsAt: "2024-01-05T08:00:00Z"},
			today:   "2024-01-05",
			allowed: true,
			access:  AccessTrial,
		},
		{
			name:    "no trial end recorded",
			profile: models.UserProfile{},
			today:   "2024-01-05",
			allowed: true,
			access:  AccessTrial,
		},
		{
			name:    "trial over, never used a free rep",
			profile: models.UserProfile{TrialEndsAt: trialOver},
			today:   "2024-01-05",
			allowed: true,
			access:  AccessFreeTier,
		},
		{
			name:      "trial over, free rep four days ago",
			profile:   models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "2024-01-01"},
			today:     "2024-01-05",
			retryDays: 3,
		},
		{
			name:      "trial over, free rep today",
			profile:   models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "2024-01-05"},
			today:     "2024-01-05",
			retryDays: 7,
		},
		{
			name:      "free rep dated in the future",
			profile:   models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "2024-01-10"},
			today:     "2024-01-05",
			retryDays: 7,
		},
		{
			name:      "six days is not enough",
			profile:   models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "2024-01-01"},
			today:     "2024-01-07",
			retryDays: 1,
		},
		{
			name:    "seven days later",
			profile: models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "2024-01-01"},
			today:   "2024-01-08",
			allowed: true,
			access:  AccessFreeTier,
		},
		{
			name:    "date only trial end",
			profile: models.UserProfile{TrialEndsAt: "2024-01-06"},
			today:   "2024-01-05",
			allowed: true,
			access:  AccessTrial,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckEligibility(&tt.profile, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, got.Allowed)
			if tt.allowed {
				assert.Equal(t, tt.access, got.Access)
				return
			}
			assert.Equal(t, reperr.KindWeeklyLimitReached, got.Reason)
			assert.Equal(t, tt.retryDays, got.RetryAfterDays)
		})
	}
}

func TestCheckEligibilityWindowBoundary(t *testing.T) {
	profile := &models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "2024-03-10"}
	for gap := 0; gap <= 14; gap++ {
		today := models.DateOf(mustDate(t, "2024-03-10").AddDate(0, 0, gap))
		got, err := CheckEligibility(profile, today)
		require.NoError(t, err)
		assert.Equal(t, gap >= FreeRepIntervalDays, got.Allowed, "gap %d", gap)
	}
}

func TestCheckEligibilityBadInput(t *testing.T) {
	_, err := CheckEligibility(nil, "2024-01-05")
	assert.True(t, errors.Is(err, reperr.ErrProfileNotFound))

	_, err = CheckEligibility(&models.UserProfile{TrialEndsAt: "soon"}, "2024-01-05")
	assert.Error(t, err)

	_, err = CheckEligibility(&models.UserProfile{TrialEndsAt: trialOver, LastFreeRepDate: "last week"}, "2024-01-05")
	assert.Error(t, err)
}

func TestGateRecordsFreeRep(t *testing.T) {
	store := newMemStore()
	store.addProfile(models.UserProfile{UserID: "u1", TrialEndsAt: trialOver, LastFreeRepDate: "2023-12-20"})
	svc := newTestService(t, store, nil, nil)

	p := store.profile("u1")
	e, err := svc.gate(context.Background(), &p, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, AccessFreeTier, e.Access)
	assert.Equal(t, "2024-01-05", store.profile("u1").LastFreeRepDate)

	// a second request the same day is denied
	p = store.profile("u1")
	_, err = svc.gate(context.Background(), &p, "2024-01-05")
	var rerr *reperr.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, reperr.KindWeeklyLimitReached, rerr.Kind)
	assert.Equal(t, 7, rerr.RetryAfterDays)
}

func TestGateLosingConcurrentClaim(t *testing.T) {
	store := newMemStore()
	store.addProfile(models.UserProfile{UserID: "u1", TrialEndsAt: trialOver})
	svc := newTestService(t, store, nil, nil)

	// both requests read the profile before either claims
	first := store.profile("u1")
	second := store.profile("u1")

	_, err := svc.gate(context.Background(), &first, "2024-01-05")
	require.NoError(t, err)

	_, err = svc.gate(context.Background(), &second, "2024-01-05")
	var rerr *reperr.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, reperr.KindWeeklyLimitReached, rerr.Kind)
	assert.Equal(t, 7, rerr.RetryAfterDays)
}

func TestGateLeavesPaidUsersAlone(t *testing.T) {
	store := newMemStore()
	store.addProfile(models.UserProfile{UserID: "u1", Subscribed: true, TrialEndsAt: trialOver})
	svc := newTestService(t, store, nil, nil)

	p := store.profile("u1")
	_, err := svc.gate(context.Background(), &p, "2024-01-05")
	require.NoError(t, err)
	assert.Empty(t, store.profile("u1").LastFreeRepDate)
}
