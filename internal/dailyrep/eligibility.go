package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FreeRepIntervalDays is the length of the rolling window in which a user past the trial
// gets one free rep.
const FreeRepIntervalDays = 7

type Access string

const (
	AccessSubscribed Access = "subscribed"
	AccessTrial      Access = "trial"
	AccessFreeTier   Access = "free_tier"
)

type Eligibility struct {
	Allowed        bool        `json:"allowed"`
	Access         Access      `json:"access,omitempty"`
	Reason         reperr.Kind `json:"reason,omitempty"`
	RetryAfterDays int         `json:"retryAfterDays,omitempty"`
}

// CheckEligibility decides whether profile may receive a rep on today (YYYY-MM-DD). It has no
// side effects; recording the free-tier grant is the gate's job.
func CheckEligibility(profile *models.UserProfile, today string) (Eligibility, error) {
	if profile == nil {
		return Eligibility{}, reperr.New(reperr.KindProfileNotFound, "profile is required")
	}
	if profile.Subscribed {
		return Eligibility{Allowed: true, Access: AccessSubscribed}, nil
	}

	inTrial, err := trialActive(profile.TrialEndsAt, today)
	if err != nil {
		return Eligibility{}, err
	}
	if inTrial {
		return Eligibility{Allowed: true, Access: AccessTrial}, nil
	}

	if profile.LastFreeRepDate == "" {
		return Eligibility{Allowed: true, Access: AccessFreeTier}, nil
	}
	days, err := models.DaysBetween(profile.LastFreeRepDate, today)
	if err != nil {
		return Eligibility{}, fmt.Errorf("invalid lastFreeRepDate %q: %w", profile.LastFreeRepDate, err)
	}
	// a free rep recorded in the future counts as taken today
	if days < 0 {
		days = 0
	}
	if days >= FreeRepIntervalDays {
		return Eligibility{Allowed: true, Access: AccessFreeTier}, nil
	}
	return Eligibility{
		Allowed:        false,
		Reason:         reperr.KindWeeklyLimitReached,
		RetryAfterDays: FreeRepIntervalDays - days,
	}, nil
}

// trialActive compares calendar dates: the trial covers the whole day it ends on.
// A profile without an end date has not left its trial.
func trialActive(trialEndsAt, today string) (bool, error) {
	if trialEndsAt == "" {
		return true, nil
	}
	end, err := time.Parse(time.RFC3339, trialEndsAt)
	if err != nil {
		if end, err = time.Parse(models.DateLayout, trialEndsAt); err != nil {
			return false, fmt.Errorf("invalid trialEndsAt %q: %w", trialEndsAt, err)
		}
	}
	return today <= models.DateOf(end), nil
}

// gate admits a user for today. Free-tier grants are claimed with a conditional write so that
// concurrent requests cannot both spend the same weekly allowance. The claim happens before
// the rep is produced and is not refunded when production fails.
func (s *Service) gate(ctx context.Context, profile *models.UserProfile, today string) (Eligibility, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"userId": profile.UserID,
		"date":   today,
	})

	e, err := CheckEligibility(profile, today)
	if err != nil {
		return e, err
	}
	if !e.Allowed {
		logger.WithField("retryAfterDays", e.RetryAfterDays).Info("Weekly free rep already used")
		return e, reperr.WeeklyLimit(e.RetryAfterDays)
	}
	if e.Access != AccessFreeTier {
		return e, nil
	}

	claimed, err := s.profiles.ClaimFreeRep(ctx, profile.UserID, today, FreeRepIntervalDays)
	if err != nil {
		return e, fmt.Errorf("failed to record free rep: %w", err)
	}
	if !claimed {
		retry := FreeRepIntervalDays
		if fresh, err := s.profiles.GetProfile(ctx, profile.UserID); err == nil && fresh != nil {
			if again, err := CheckEligibility(fresh, today); err == nil && !again.Allowed {
				retry = again.RetryAfterDays
			}
		}
		logger.Info("Lost the free rep claim to a concurrent request")
		return Eligibility{Reason: reperr.KindWeeklyLimitReached, RetryAfterDays: retry}, reperr.WeeklyLimit(retry)
	}

	profile.LastFreeRepDate = today
	logger.Info("Granted weekly free rep")
	return e, nil
}
