package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
)

type Streak struct {
	Current           int
	Longest           int
	LastCompletedDate string
}

// NextStreak applies a completion on date to the streak. A completion the day after the last
// one extends it, a later one restarts it at 1. Completions on or before the last completed
// date leave it unchanged.
func NextStreak(s Streak, date string) (Streak, bool, error) {
	if s.LastCompletedDate != "" {
		gap, err := models.DaysBetween(s.LastCompletedDate, date)
		if err != nil {
			return s, false, err
		}
		if gap <= 0 {
			return s, false, nil
		}
		if gap == 1 {
			s.Current++
		} else {
			s.Current = 1
		}
	} else {
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastCompletedDate = date
	return s, true, nil
}

func (s *Service) recordCompletion(ctx context.Context, userID, date string) error {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return reperr.New(reperr.KindProfileNotFound, "no profile for user %s", userID)
	}

	next, changed, err := NextStreak(Streak{
		Current:           profile.CurrentStreak,
		Longest:           profile.LongestStreak,
		LastCompletedDate: profile.LastCompletedDate,
	}, date)
	if err != nil || !changed {
		return err
	}
	return s.profiles.UpdateStreak(ctx, userID, next.Current, next.Longest, next.LastCompletedDate)
}
