package db

import (
	"context"
	"time"

	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

// DeckStats summarizes one learner's collection.
func (db *DB) DeckStats(ctx context.Context, learnerID int64, now time.Time) (*models.DeckStats, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("fetching deck stats: learner_id=%d", learnerID)

	var s models.DeckStats
	err := db.QueryRowContext(ctx, `
SELECT
    COUNT(*) AS total_cards,
    COUNT(CASE WHEN is_learning = 1 OR interval_days < 1 OR repetitions = 0 THEN 1 END) AS learning_cards,
    COUNT(CASE WHEN due_at <= ? THEN 1 END) AS due_cards,
    COUNT(CASE WHEN due_at > ? AND due_at <= ? THEN 1 END) AS due_soon_cards,
    COALESCE(SUM(total_reviews), 0) AS total_reviews,
    CASE
        WHEN SUM(total_reviews) > 0
        THEN ROUND(100.0 * SUM(correct_answers) / SUM(total_reviews), 1)
        ELSE 0
    END AS overall_accuracy,
    COALESCE(AVG(ease_factor), 0) AS avg_ease_factor,
    COALESCE(AVG(interval_days), 0) AS avg_interval_days
FROM cards
WHERE learner_id = ?
`, now, now, now.AddDate(0, 0, 7), learnerID).Scan(
		&s.TotalCards,
		&s.LearningCards,
		&s.DueCards,
		&s.DueSoonCards,
		&s.TotalReviews,
		&s.OverallAccuracy,
		&s.AvgEaseFactor,
		&s.AvgIntervalDays,
	)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, err
	}
	return &s, nil
}
