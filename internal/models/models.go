package models

import "time"

// Learner owns a set of cards. All card queries are scoped to one learner.
type Learner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Review types control which side of a card is shown first.
const (
	ReviewTypeRecognition = "recognition" // show term, expect the definition
	ReviewTypeRecall      = "recall"      // show definition, expect the term
)

// Card is a term/definition pair under spaced-repetition scheduling.
type Card struct {
	ID         int64  `json:"id"`
	LearnerID  int64  `json:"learner_id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	ReviewType string `json:"review_type"`

	// Additional strings accepted as correct for typed answers.
	AcceptableAnswers []string `json:"acceptable_answers"`

	// Scheduling state, mutated only through the scheduler.
	IntervalDays   float64    `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	Repetitions    int        `json:"repetitions"`
	LearningStep   int        `json:"learning_step"`
	IsLearning     bool       `json:"is_learning"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`

	// Performance counters, reporting only.
	TotalReviews   int `json:"total_reviews"`
	CorrectAnswers int `json:"correct_answers"`

	CreatedAt time.Time `json:"created_at"`
}

// Question returns the side of the card shown to the learner.
func (c Card) Question() string {
	if c.ReviewType == ReviewTypeRecall {
		return c.Definition
	}
	return c.Term
}

// Answer returns the side of the card the learner must produce.
func (c Card) Answer() string {
	if c.ReviewType == ReviewTypeRecall {
		return c.Term
	}
	return c.Definition
}

// Accuracy returns the percentage of correct typed answers, rounded.
func (c Card) Accuracy() int {
	if c.TotalReviews == 0 {
		return 0
	}
	return int(float64(c.CorrectAnswers)/float64(c.TotalReviews)*100 + 0.5)
}

// CardFilter narrows and orders card listings.
type CardFilter struct {
	LearnerID    int64
	DueOnly      bool
	LearningOnly bool
	Limit        int
	Offset       int
}

// Score is the result of grading a typed answer.
type Score struct {
	Quality    int     `json:"quality"` // 0=Again, 1=Hard, 2=Good, 3=Easy
	IsCorrect  bool    `json:"is_correct"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	AIGraded   bool    `json:"ai_graded"`
}

// CardDraft is a generated or parsed card before it is persisted.
type CardDraft struct {
	Term              string   `json:"term"`
	Definition        string   `json:"definition"`
	AcceptableAnswers []string `json:"acceptable_answers,omitempty"`
}

// DeckStats summarizes a learner's whole collection.
type DeckStats struct {
	TotalCards      int     `json:"total_cards"`
	LearningCards   int     `json:"learning_cards"`
	DueCards        int     `json:"due_cards"`
	DueSoonCards    int     `json:"due_soon_cards"`
	TotalReviews    int     `json:"total_reviews"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}
