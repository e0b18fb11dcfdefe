package services

import (
	"context"
	"strings"
	"time"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/grader"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/review"
	"github.com/arlen/cardbox/internal/srs"
)

// TypedAnswerResult is returned from the typed-answer endpoints. It carries
// the grading verdict alongside the rescheduled card so the client can show
// the correct answer and the next due time in one round trip.
type TypedAnswerResult struct {
	Card          *models.Card `json:"card"`
	Score         models.Score `json:"score"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// ReviewService drives review sessions: picking the next due card, grading
// answers, and advancing card scheduling state.
type ReviewService interface {
	NextDue(ctx context.Context, learnerID int64, excludeCardID int64) (*models.Card, int, error)
	CountDue(ctx context.Context, learnerID int64) (int, error)
	SubmitRating(ctx context.Context, cardID, learnerID int64, rating srs.Rating, timeSeconds float64) (*models.Card, error)
	SubmitTypedAnswer(ctx context.Context, cardID, learnerID int64, answer string, timeSeconds float64) (*TypedAnswerResult, error)
	SubmitTypedAnswerAI(ctx context.Context, cardID, learnerID int64, answer string, timeSeconds float64) (*TypedAnswerResult, error)
	OverrideRating(ctx context.Context, cardID, learnerID int64, rating srs.Rating) (*models.Card, error)
}

type reviewService struct {
	db     *db.DB
	queue  *review.Queue
	scorer *grader.Scorer
}

// NewReviewService creates a new ReviewService. The scorer's AI collaborator
// may be nil, in which case AI grading falls back to lexical grading.
func NewReviewService(database *db.DB, queue *review.Queue, scorer *grader.Scorer) ReviewService {
	return &reviewService{db: database, queue: queue, scorer: scorer}
}

func (s *reviewService) NextDue(ctx context.Context, learnerID int64, excludeCardID int64) (*models.Card, int, error) {
	card, remaining, err := s.queue.Next(ctx, learnerID, time.Now().UTC(), excludeCardID)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	return card, remaining, nil
}

func (s *reviewService) CountDue(ctx context.Context, learnerID int64) (int, error) {
	count, err := s.queue.CountDue(ctx, learnerID, time.Now().UTC())
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	return count, nil
}

// SubmitRating advances the card with a self-assessed rating. Answer
// counters are not touched because no answer was typed.
func (s *reviewService) SubmitRating(ctx context.Context, cardID, learnerID int64, rating srs.Rating, timeSeconds float64) (*models.Card, error) {
	if !rating.Valid() {
		return nil, errors.NewValidationError("rating", "must be between 0 and 3")
	}

	card, err := s.getCard(ctx, cardID, learnerID)
	if err != nil {
		return nil, err
	}

	applyState(card, srs.Advance(stateOf(*card), rating, time.Now().UTC()))

	if err := s.db.UpdateCardReview(ctx, *card); err != nil {
		return nil, errors.NewInternalError(err)
	}
	s.logReview(ctx, cardID, int(rating), false, timeSeconds)
	return card, nil
}

// SubmitTypedAnswer grades a typed answer lexically and reschedules the
// card: a correct answer rates Good, anything else rates Again.
func (s *reviewService) SubmitTypedAnswer(ctx context.Context, cardID, learnerID int64, answer string, timeSeconds float64) (*TypedAnswerResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, errors.NewValidationError("answer", "must not be empty")
	}

	card, err := s.getCard(ctx, cardID, learnerID)
	if err != nil {
		return nil, err
	}

	isCorrect := grader.Evaluate(card.Answer(), card.AcceptableAnswers, answer)
	rating := srs.Again
	if isCorrect {
		rating = srs.Good
	}
	score := models.Score{
		Quality:   int(rating),
		IsCorrect: isCorrect,
		Reasoning: "Graded by exact and token matching",
	}
	if isCorrect {
		score.Confidence = 1.0
	}
	return s.finishTypedAnswer(ctx, card, rating, score, timeSeconds)
}

// SubmitTypedAnswerAI grades a typed answer with the AI scorer, which falls
// back to lexical grading when the AI is unavailable, then reschedules the
// card with the resulting quality.
func (s *reviewService) SubmitTypedAnswerAI(ctx context.Context, cardID, learnerID int64, answer string, timeSeconds float64) (*TypedAnswerResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, errors.NewValidationError("answer", "must not be empty")
	}

	card, err := s.getCard(ctx, cardID, learnerID)
	if err != nil {
		return nil, err
	}

	score := s.scorer.Score(ctx, card.Question(), card.Answer(), strings.TrimSpace(answer), card.ReviewType)
	return s.finishTypedAnswer(ctx, card, srs.Rating(score.Quality), score, timeSeconds)
}

// OverrideRating re-runs scheduling with a learner-chosen rating after a
// graded answer, without touching the answer counters again.
func (s *reviewService) OverrideRating(ctx context.Context, cardID, learnerID int64, rating srs.Rating) (*models.Card, error) {
	if !rating.Valid() {
		return nil, errors.NewValidationError("rating", "must be between 0 and 3")
	}

	card, err := s.getCard(ctx, cardID, learnerID)
	if err != nil {
		return nil, err
	}

	applyState(card, srs.Advance(stateOf(*card), rating, time.Now().UTC()))

	if err := s.db.UpdateCardReview(ctx, *card); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *reviewService) finishTypedAnswer(ctx context.Context, card *models.Card, rating srs.Rating, score models.Score, timeSeconds float64) (*TypedAnswerResult, error) {
	card.TotalReviews++
	if score.IsCorrect {
		card.CorrectAnswers++
	}

	applyState(card, srs.Advance(stateOf(*card), rating, time.Now().UTC()))

	if err := s.db.UpdateCardReview(ctx, *card); err != nil {
		return nil, errors.NewInternalError(err)
	}
	s.logReview(ctx, card.ID, int(rating), score.AIGraded, timeSeconds)

	return &TypedAnswerResult{
		Card:          card,
		Score:         score,
		CorrectAnswer: card.Answer(),
	}, nil
}

func (s *reviewService) getCard(ctx context.Context, cardID, learnerID int64) (*models.Card, error) {
	card, err := s.db.GetCard(ctx, cardID, learnerID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}
	return card, nil
}

// logReview records the review event. Failures are logged and swallowed so
// history never blocks scheduling.
func (s *reviewService) logReview(ctx context.Context, cardID int64, rating int, aiGraded bool, timeSeconds float64) {
	if err := s.db.InsertReviewLog(ctx, cardID, rating, aiGraded, timeSeconds); err != nil {
		logger.FromContext(ctx).Warn("failed to record review log for card %d: %v", cardID, err)
	}
}
