// Package srs implements the spaced-repetition scheduler: a pure two-state
// (learning/review) machine in the style of Anki's SM-2 variant. It never
// touches storage; callers persist the returned state.
package srs

import (
	"math"
	"time"
)

// Rating is the learner's recall quality for a single review.
type Rating int

const (
	Again Rating = iota
	Hard
	Good
	Easy
)

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the four defined ratings.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// Learning steps in minutes. A card cycles through these before graduating.
var learningSteps = []float64{1, 10}

const (
	graduatingIntervalDays = 1.0
	easyIntervalDays       = 4.0

	minEaseFactor = 1.3
	maxEaseFactor = 2.5

	minIntervalDays = 1.0 / (24 * 60) // one minute
	maxIntervalDays = 36500           // ~100 years
)

// State is the scheduling subset of a card.
type State struct {
	IntervalDays   float64
	EaseFactor     float64
	Repetitions    int
	LearningStep   int
	IsLearning     bool
	DueAt          time.Time
	LastReviewedAt *time.Time
}

// NewState returns the state of a freshly created card: due immediately,
// first learning step, default ease.
func NewState(now time.Time) State {
	return State{
		IntervalDays: minIntervalDays,
		EaseFactor:   maxEaseFactor,
		Repetitions:  0,
		LearningStep: 0,
		IsLearning:   true,
		DueAt:        now,
	}
}

// Learning reports whether the state should be treated as in the learning
// phase. Broader than the flag alone: it also catches cards whose persisted
// state is inconsistent, such as a graduated card whose interval was clamped
// below a day.
func (s State) Learning() bool {
	return s.IsLearning || s.Repetitions == 0 || s.IntervalDays < 1
}

// Advance applies one review to the scheduling state and returns the new
// state. It is pure and deterministic; it never fails for a valid rating.
// Rating validation is the caller's concern.
func Advance(s State, rating Rating, now time.Time) State {
	if s.Learning() {
		s = advanceLearning(s, rating)
	} else {
		s = advanceReview(s, rating)
	}

	s.IntervalDays = clamp(s.IntervalDays, minIntervalDays, maxIntervalDays)
	s.EaseFactor = clamp(s.EaseFactor, minEaseFactor, maxEaseFactor)
	s.DueAt = dueAt(now, s.IntervalDays)
	reviewed := now
	s.LastReviewedAt = &reviewed
	return s
}

func advanceLearning(s State, rating Rating) State {
	switch rating {
	case Again:
		return lapse(s)
	case Hard:
		// Back one step, or repeat the first.
		if s.LearningStep > 0 {
			s.LearningStep--
		}
		s.IntervalDays = stepInterval(s.LearningStep)
		s.IsLearning = true
	case Good:
		if s.LearningStep < len(learningSteps)-1 {
			s.LearningStep++
			s.IntervalDays = stepInterval(s.LearningStep)
			s.IsLearning = true
		} else {
			s = graduate(s, graduatingIntervalDays)
		}
	case Easy:
		// Graduates immediately regardless of step.
		s = graduate(s, easyIntervalDays)
	}
	return s
}

func advanceReview(s State, rating Rating) State {
	switch rating {
	case Again:
		return lapse(s)
	case Hard:
		s.IntervalDays = math.Max(1, math.Ceil(s.IntervalDays*1.2))
		s.EaseFactor -= 0.15
	case Good:
		s.Repetitions++
		switch {
		case s.Repetitions == 1:
			s.IntervalDays = graduatingIntervalDays
		case s.Repetitions == 2:
			s.IntervalDays = math.Max(graduatingIntervalDays, math.Ceil(s.IntervalDays*s.EaseFactor))
		default:
			s.IntervalDays = math.Ceil(s.IntervalDays * s.EaseFactor)
		}
	case Easy:
		s.Repetitions++
		s.IntervalDays = math.Ceil(s.IntervalDays * s.EaseFactor * 1.3)
		s.EaseFactor += 0.15
	}
	return s
}

// lapse sends a card back to the first learning step. Again is the only
// rating that can demote a graduated card.
func lapse(s State) State {
	s.IsLearning = true
	s.LearningStep = 0
	s.Repetitions = 0
	s.IntervalDays = stepInterval(0)
	s.EaseFactor -= 0.2
	return s
}

func graduate(s State, intervalDays float64) State {
	s.IntervalDays = intervalDays
	s.IsLearning = false
	s.LearningStep = 0
	s.Repetitions = 1
	return s
}

func stepInterval(step int) float64 {
	if step < 0 {
		step = 0
	}
	if step >= len(learningSteps) {
		step = len(learningSteps) - 1
	}
	return learningSteps[step] / (24 * 60)
}

// dueAt adds the interval to now: sub-day intervals add the fractional-day
// duration directly, longer intervals add a whole number of days rounded up.
func dueAt(now time.Time, intervalDays float64) time.Time {
	if intervalDays < 1 {
		return now.Add(time.Duration(intervalDays * 24 * float64(time.Hour)))
	}
	return now.AddDate(0, 0, int(math.Ceil(intervalDays)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
