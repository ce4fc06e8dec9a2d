package dailyrep

import (
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"math/rand/v2"
	"sync"
)

// Selector implements the catalog strategy. Its random source is injected so a fixed seed and
// a fixed catalog always produce the same pick.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// NewSeededSelector returns a Selector whose picks are reproducible for seed.
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.New(rand.NewPCG(seed, seed)))
}

// Pick chooses a rep from catalog for profile. Preferred candidates are in one of the
// profile's focus areas, within one level of the user and not in usedRepIDs. When none
// qualify, any rep in the user's focus areas is accepted.
func (s *Selector) Pick(profile *models.UserProfile, catalog []models.Rep, usedRepIDs map[string]bool) (*models.Rep, bool, error) {
	if len(profile.FocusAreas) == 0 {
		return nil, false, reperr.New(reperr.KindNoFocusAreas, "select at least one focus area")
	}

	var preferred, inFocus []models.Rep
	for _, rep := range catalog {
		if !profile.HasFocusArea(rep.FocusAreaID) {
			continue
		}
		inFocus = append(inFocus, rep)
		if levelMatches(profile.CurrentLevel, rep.DifficultyLevel) && !usedRepIDs[rep.ID] {
			preferred = append(preferred, rep)
		}
	}

	if len(preferred) > 0 {
		return s.choose(preferred), false, nil
	}
	if len(inFocus) > 0 {
		return s.choose(inFocus), true, nil
	}
	return nil, false, reperr.New(reperr.KindNoEligibleReps, "no reps available for the selected focus areas")
}

func (s *Selector) choose(reps []models.Rep) *models.Rep {
	s.mu.Lock()
	i := s.rng.IntN(len(reps))
	s.mu.Unlock()
	rep := reps[i]
	return &rep
}

// An unset level on either side does not restrict the match.
func levelMatches(user, rep models.Level) bool {
	if user == "" || rep == "" {
		return true
	}
	return user.Compatible(rep)
}
