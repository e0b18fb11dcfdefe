package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/grader"
	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/review"
	"github.com/arlen/cardbox/internal/services"
	"github.com/arlen/cardbox/internal/srs"
	"github.com/arlen/cardbox/internal/testutil"
)

type stubAIScorer struct {
	score models.Score
	err   error
	calls int
}

func (s *stubAIScorer) ScoreAnswer(ctx context.Context, question, expected, submitted, reviewType string) (models.Score, error) {
	s.calls++
	return s.score, s.err
}

type reviewFixture struct {
	db      *db.DB
	svc     services.ReviewService
	cards   services.CardService
	learner int64
}

func newReviewFixture(t *testing.T, ai grader.AIScorer) *reviewFixture {
	t.Helper()
	database := testutil.NewTestDB(t)

	learner, err := database.UpsertLearner(context.Background(), "ada")
	require.NoError(t, err)

	return &reviewFixture{
		db:      database,
		svc:     services.NewReviewService(database, review.NewQueue(database), grader.NewScorer(ai)),
		cards:   services.NewCardService(database),
		learner: learner.ID,
	}
}

func (f *reviewFixture) createCard(t *testing.T, term, definition string, alts ...string) *models.Card {
	t.Helper()
	card, err := f.cards.CreateCard(context.Background(), f.learner, models.CardDraft{
		Term:              term,
		Definition:        definition,
		AcceptableAnswers: alts,
	}, models.ReviewTypeRecognition)
	require.NoError(t, err)
	return card
}

func TestSubmitRating_AdvancesSchedulingWithoutCounters(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "osmosis", "movement of water across a membrane")

	updated, err := f.svc.SubmitRating(context.Background(), card.ID, f.learner, srs.Good, 4.2)
	require.NoError(t, err)

	// One learning step forward, still learning.
	assert.True(t, updated.IsLearning)
	assert.Equal(t, 1, updated.LearningStep)
	assert.InDelta(t, 10.0/1440, updated.IntervalDays, 1e-9)
	assert.NotNil(t, updated.LastReviewedAt)

	// Self-assessed ratings do not count as typed answers.
	assert.Equal(t, 0, updated.TotalReviews)
	assert.Equal(t, 0, updated.CorrectAnswers)
}

func TestSubmitRating_InvalidRating(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "osmosis", "movement of water")

	_, err := f.svc.SubmitRating(context.Background(), card.ID, f.learner, srs.Rating(7), 0)
	assert.Error(t, err)
}

func TestSubmitRating_CardNotFound(t *testing.T) {
	f := newReviewFixture(t, nil)

	_, err := f.svc.SubmitRating(context.Background(), 999, f.learner, srs.Good, 0)
	assert.Error(t, err)
}

func TestSubmitTypedAnswer_CorrectRatesGood(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "capital of France", "Paris")

	result, err := f.svc.SubmitTypedAnswer(context.Background(), card.ID, f.learner, "  paris! ", 3.0)
	require.NoError(t, err)

	assert.True(t, result.Score.IsCorrect)
	assert.Equal(t, int(srs.Good), result.Score.Quality)
	assert.Equal(t, "Paris", result.CorrectAnswer)
	assert.Equal(t, 1, result.Card.TotalReviews)
	assert.Equal(t, 1, result.Card.CorrectAnswers)
	assert.Equal(t, 1, result.Card.LearningStep)
}

func TestSubmitTypedAnswer_AlternativeAccepted(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "H2O", "water", "dihydrogen monoxide")

	result, err := f.svc.SubmitTypedAnswer(context.Background(), card.ID, f.learner, "dihydrogen monoxide", 0)
	require.NoError(t, err)
	assert.True(t, result.Score.IsCorrect)
}

func TestSubmitTypedAnswer_EmptyAnswerRejected(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "capital of France", "Paris")

	_, err := f.svc.SubmitTypedAnswer(context.Background(), card.ID, f.learner, "   ", 0)
	assert.Error(t, err)
}

func TestSubmitTypedAnswer_WrongRatesAgain(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "capital of France", "Paris")

	result, err := f.svc.SubmitTypedAnswer(context.Background(), card.ID, f.learner, "London", 3.0)
	require.NoError(t, err)

	assert.False(t, result.Score.IsCorrect)
	assert.Equal(t, int(srs.Again), result.Score.Quality)
	assert.Equal(t, 1, result.Card.TotalReviews)
	assert.Equal(t, 0, result.Card.CorrectAnswers)
	assert.Equal(t, 0, result.Card.LearningStep)
}

func TestSubmitTypedAnswerAI_UsesAIQuality(t *testing.T) {
	ai := &stubAIScorer{score: models.Score{
		Quality:    int(srs.Hard),
		IsCorrect:  true,
		Confidence: 0.9,
		Reasoning:  "close but imprecise",
		AIGraded:   true,
	}}
	f := newReviewFixture(t, ai)
	card := f.createCard(t, "osmosis", "movement of water across a membrane")

	result, err := f.svc.SubmitTypedAnswerAI(context.Background(), card.ID, f.learner, "water moves through a membrane", 5.0)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls)
	assert.True(t, result.Score.AIGraded)
	assert.Equal(t, int(srs.Hard), result.Score.Quality)
	// Hard on the first learning step keeps the card at step zero.
	assert.Equal(t, 0, result.Card.LearningStep)
	assert.True(t, result.Card.IsLearning)
	assert.Equal(t, 1, result.Card.TotalReviews)
	assert.Equal(t, 1, result.Card.CorrectAnswers)
}

func TestSubmitTypedAnswerAI_FallsBackWhenAIFails(t *testing.T) {
	ai := &stubAIScorer{err: errors.New("rate limited")}
	f := newReviewFixture(t, ai)
	card := f.createCard(t, "capital of France", "Paris")

	result, err := f.svc.SubmitTypedAnswerAI(context.Background(), card.ID, f.learner, "paris", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls)
	assert.False(t, result.Score.AIGraded)
	assert.Equal(t, int(srs.Easy), result.Score.Quality)
	assert.True(t, result.Score.IsCorrect)
}

func TestOverrideRating_NoCounterChanges(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "capital of France", "Paris")

	answered, err := f.svc.SubmitTypedAnswer(context.Background(), card.ID, f.learner, "paris", 0)
	require.NoError(t, err)
	require.Equal(t, 1, answered.Card.TotalReviews)

	overridden, err := f.svc.OverrideRating(context.Background(), card.ID, f.learner, srs.Easy)
	require.NoError(t, err)

	// Easy graduates immediately with the four day interval.
	assert.False(t, overridden.IsLearning)
	assert.Equal(t, 4.0, overridden.IntervalDays)
	assert.Equal(t, 1, overridden.TotalReviews)
	assert.Equal(t, 1, overridden.CorrectAnswers)
}

func TestNextDueAndCount(t *testing.T) {
	f := newReviewFixture(t, nil)
	first := f.createCard(t, "alpha", "first letter")
	f.createCard(t, "beta", "second letter")

	count, err := f.svc.CountDue(context.Background(), f.learner)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	card, remaining, err := f.svc.NextDue(context.Background(), f.learner, 0)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, 1, remaining)

	// Excluding the just-reviewed card surfaces the other one.
	next, _, err := f.svc.NextDue(context.Background(), f.learner, first.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, first.ID, next.ID)
}

func TestTypedAnswer_WritesReviewLog(t *testing.T) {
	f := newReviewFixture(t, nil)
	card := f.createCard(t, "capital of France", "Paris")

	_, err := f.svc.SubmitTypedAnswer(context.Background(), card.ID, f.learner, "paris", 2.5)
	require.NoError(t, err)

	var count int
	var rating int
	var timeSeconds float64
	err = f.db.QueryRowContext(context.Background(),
		`SELECT COUNT(*), rating, time_seconds FROM review_log WHERE card_id = ?`, card.ID).
		Scan(&count, &rating, &timeSeconds)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int(srs.Good), rating)
	assert.Equal(t, 2.5, timeSeconds)
}
