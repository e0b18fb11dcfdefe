package srs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlen/cardbox/internal/srs"
)

const minuteInterval = 1.0 / (24 * 60)

func newCardState() srs.State {
	return srs.NewState(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestAdvance_NewCardAgain(t *testing.T) {
	now := time.Now()
	s := srs.Advance(newCardState(), srs.Again, now)

	assert.True(t, s.IsLearning, "again keeps the card in learning")
	assert.Equal(t, 0, s.Repetitions)
	assert.Equal(t, 0, s.LearningStep)
	assert.InDelta(t, minuteInterval, s.IntervalDays, 1e-9, "back to the one-minute step")
	assert.InDelta(t, 2.3, s.EaseFactor, 1e-9, "ease drops by 0.2")
}

func TestAdvance_LearningGoodMovesToNextStep(t *testing.T) {
	now := time.Now()
	s := srs.Advance(newCardState(), srs.Good, now)

	assert.True(t, s.IsLearning)
	assert.Equal(t, 1, s.LearningStep)
	assert.InDelta(t, 10.0/(24*60), s.IntervalDays, 1e-9, "ten-minute step")
	assert.Equal(t, 0, s.Repetitions, "not graduated yet")
}

func TestAdvance_LearningGoodAtLastStepGraduates(t *testing.T) {
	now := time.Now()
	s := newCardState()
	s = srs.Advance(s, srs.Good, now) // step 0 -> 1
	s = srs.Advance(s, srs.Good, now) // step 1 -> graduate

	assert.False(t, s.IsLearning)
	assert.Equal(t, 1, s.Repetitions)
	assert.Equal(t, 1.0, s.IntervalDays, "graduating interval is one day")
}

func TestAdvance_LearningHardStaysOrStepsBack(t *testing.T) {
	now := time.Now()

	// At step 0 Hard repeats the current step.
	s := srs.Advance(newCardState(), srs.Hard, now)
	assert.Equal(t, 0, s.LearningStep)
	assert.InDelta(t, minuteInterval, s.IntervalDays, 1e-9)
	assert.True(t, s.IsLearning)

	// At step 1 Hard goes back to step 0.
	s = srs.Advance(newCardState(), srs.Good, now)
	require.Equal(t, 1, s.LearningStep)
	s = srs.Advance(s, srs.Hard, now)
	assert.Equal(t, 0, s.LearningStep)
	assert.InDelta(t, minuteInterval, s.IntervalDays, 1e-9)
}

func TestAdvance_EasyGraduatesImmediately(t *testing.T) {
	now := time.Now()
	s := srs.Advance(newCardState(), srs.Easy, now)

	assert.False(t, s.IsLearning)
	assert.Equal(t, 1, s.Repetitions)
	assert.Equal(t, 4.0, s.IntervalDays, "easy interval is four days")
}

func TestAdvance_ReviewAgainDemotesToLearning(t *testing.T) {
	now := time.Now()
	s := srs.State{
		IntervalDays: 12,
		EaseFactor:   2.5,
		Repetitions:  3,
		IsLearning:   false,
	}

	s = srs.Advance(s, srs.Again, now)

	assert.True(t, s.IsLearning)
	assert.Equal(t, 0, s.Repetitions)
	assert.InDelta(t, minuteInterval, s.IntervalDays, 1e-9)
	assert.InDelta(t, 2.3, s.EaseFactor, 1e-9)
}

func TestAdvance_ReviewHard(t *testing.T) {
	now := time.Now()
	s := srs.State{
		IntervalDays: 10,
		EaseFactor:   2.5,
		Repetitions:  3,
		IsLearning:   false,
	}

	s = srs.Advance(s, srs.Hard, now)

	assert.Equal(t, 12.0, s.IntervalDays, "ceil(10 * 1.2)")
	assert.InDelta(t, 2.35, s.EaseFactor, 1e-9, "ease drops by 0.15")
	assert.Equal(t, 3, s.Repetitions, "hard never changes repetitions")
	assert.False(t, s.IsLearning)
}

func TestAdvance_ReviewGoodSecondRepetition(t *testing.T) {
	now := time.Now()
	s := srs.State{
		IntervalDays: 1,
		EaseFactor:   2.5,
		Repetitions:  1,
		IsLearning:   false,
	}

	s = srs.Advance(s, srs.Good, now)

	assert.Equal(t, 2, s.Repetitions)
	assert.Equal(t, 3.0, s.IntervalDays, "max(1, ceil(1 * 2.5))")
	assert.InDelta(t, 2.5, s.EaseFactor, 1e-9, "good leaves ease untouched")
}

func TestAdvance_ReviewGoodThirdRepetition(t *testing.T) {
	// The repetitions==2 special case must not fire when the count becomes 3.
	now := time.Now()
	s := srs.State{
		IntervalDays: 1,
		EaseFactor:   2.5,
		Repetitions:  2,
		IsLearning:   false,
	}

	s = srs.Advance(s, srs.Good, now)

	assert.Equal(t, 3, s.Repetitions)
	assert.Equal(t, 3.0, s.IntervalDays, "ceil(1 * 2.5)")
}

func TestAdvance_ReviewEasy(t *testing.T) {
	now := time.Now()
	s := srs.State{
		IntervalDays: 10,
		EaseFactor:   2.0,
		Repetitions:  2,
		IsLearning:   false,
	}

	s = srs.Advance(s, srs.Easy, now)

	assert.Equal(t, 3, s.Repetitions)
	assert.Equal(t, 26.0, s.IntervalDays, "ceil(10 * 2.0 * 1.3)")
	assert.InDelta(t, 2.15, s.EaseFactor, 1e-9, "ease rises by 0.15")
}

func TestAdvance_DueAtAndLastReviewed(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// Sub-day interval adds the fractional duration directly.
	s := srs.Advance(newCardState(), srs.Again, now)
	assert.Equal(t, now.Add(time.Minute), s.DueAt)
	require.NotNil(t, s.LastReviewedAt)
	assert.Equal(t, now, *s.LastReviewedAt)

	// Whole-day intervals add days.
	s = srs.Advance(newCardState(), srs.Easy, now)
	assert.Equal(t, now.AddDate(0, 0, 4), s.DueAt)
}

func TestAdvance_ClampsStayWithinBounds(t *testing.T) {
	now := time.Now()
	ratings := []srs.Rating{srs.Again, srs.Hard, srs.Good, srs.Easy}

	states := []srs.State{
		newCardState(),
		{IntervalDays: 1, EaseFactor: 1.3, Repetitions: 1},
		{IntervalDays: 36500, EaseFactor: 2.5, Repetitions: 50},
		{IntervalDays: 0.5, EaseFactor: 1.3, Repetitions: 2, IsLearning: true},
		{IntervalDays: 30000, EaseFactor: 2.5, Repetitions: 10},
	}

	for _, start := range states {
		for _, rating := range ratings {
			s := srs.Advance(start, rating, now)
			assert.GreaterOrEqual(t, s.EaseFactor, 1.3)
			assert.LessOrEqual(t, s.EaseFactor, 2.5)
			assert.GreaterOrEqual(t, s.IntervalDays, 1.0/(24*60))
			assert.LessOrEqual(t, s.IntervalDays, 36500.0)
		}
	}
}

func TestAdvance_InconsistentStateTreatedAsLearning(t *testing.T) {
	// A "graduated" card with a sub-day interval is handled as learning.
	now := time.Now()
	s := srs.State{
		IntervalDays: 0.5,
		EaseFactor:   2.0,
		Repetitions:  2,
		IsLearning:   false,
	}
	require.True(t, s.Learning())

	s = srs.Advance(s, srs.Good, now)
	assert.True(t, s.IsLearning, "good from an odd step keeps the card in learning")
}

func TestRating_Valid(t *testing.T) {
	assert.True(t, srs.Good.Valid())
	assert.False(t, srs.Rating(-1).Valid())
	assert.False(t, srs.Rating(4).Valid())
}
