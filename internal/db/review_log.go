package db

import (
	"context"

	"github.com/arlen/cardbox/internal/logger"
)

// InsertReviewLog records one grading event. Best-effort: callers treat a
// failure here as non-fatal to the review itself.
func (db *DB) InsertReviewLog(ctx context.Context, cardID int64, rating int, aiGraded bool, timeSeconds float64) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("inserting review log: card_id=%d, rating=%d, ai_graded=%t", cardID, rating, aiGraded)

	_, err := db.ExecContext(ctx, `
INSERT INTO review_log (card_id, rating, ai_graded, time_seconds)
VALUES (?, ?, ?, ?)
`, cardID, rating, aiGraded, timeSeconds)
	if err != nil {
		log.Error("failed to insert review log: %v", err)
	}
	return err
}
