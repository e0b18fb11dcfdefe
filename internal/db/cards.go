package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

const cardColumns = `id, learner_id, term, definition, review_type, acceptable_answers,
interval_days, ease_factor, repetitions, learning_step, is_learning, due_at, last_reviewed_at,
total_reviews, correct_answers, created_at`

func (db *DB) InsertCard(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("inserting card: learner_id=%d, term=%s", c.LearnerID, c.Term)

	alts, err := marshalAnswers(c.AcceptableAnswers)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `
INSERT INTO cards (learner_id, term, definition, review_type, acceptable_answers,
                   interval_days, ease_factor, repetitions, learning_step, is_learning, due_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.LearnerID, c.Term, c.Definition, c.ReviewType, alts,
		c.IntervalDays, c.EaseFactor, c.Repetitions, c.LearningStep, c.IsLearning, c.DueAt)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	log.Debug("card inserted: id=%d", id)
	return id, nil
}

func (db *DB) GetCard(ctx context.Context, id, learnerID int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("getting card: id=%d, learner_id=%d", id, learnerID)

	row := db.QueryRowContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE id = ? AND learner_id = ?
`, id, learnerID)

	c, err := scanCard(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return c, nil
}

// UpdateCardContent changes the text fields only; scheduling state is
// untouched.
func (db *DB) UpdateCardContent(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("updating card content: id=%d", c.ID)

	alts, err := marshalAnswers(c.AcceptableAnswers)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
UPDATE cards
SET term = ?, definition = ?, review_type = ?, acceptable_answers = ?
WHERE id = ? AND learner_id = ?
`, c.Term, c.Definition, c.ReviewType, alts, c.ID, c.LearnerID)
	if err != nil {
		log.Error("failed to update card content: %v", err)
	}
	return err
}

// UpdateCardReview persists the outcome of one grading event: scheduling
// state and performance counters in a single statement, so a reader never
// sees updated counters with a stale due date.
func (db *DB) UpdateCardReview(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("updating card review state: id=%d, interval=%.4f, ease=%.2f", c.ID, c.IntervalDays, c.EaseFactor)

	_, err := db.ExecContext(ctx, `
UPDATE cards
SET interval_days = ?, ease_factor = ?, repetitions = ?, learning_step = ?, is_learning = ?,
    due_at = ?, last_reviewed_at = ?, total_reviews = ?, correct_answers = ?
WHERE id = ?
`, c.IntervalDays, c.EaseFactor, c.Repetitions, c.LearningStep, c.IsLearning,
		c.DueAt, c.LastReviewedAt, c.TotalReviews, c.CorrectAnswers, c.ID)
	if err != nil {
		log.Error("failed to update card review state: %v", err)
	}
	return err
}

func (db *DB) DeleteCard(ctx context.Context, id, learnerID int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("deleting card: id=%d, learner_id=%d", id, learnerID)

	res, err := db.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND learner_id = ?`, id, learnerID)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCards returns a learner's cards, newest first, with optional due-only
// and learning-only filters.
func (db *DB) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("listing cards: learner_id=%d, due_only=%t, learning_only=%t",
		filter.LearnerID, filter.DueOnly, filter.LearningOnly)

	query := sqlBuilder.Select(cardColumns).
		From("cards").
		Where(squirrel.Eq{"learner_id": filter.LearnerID}).
		OrderBy("created_at DESC, id DESC")

	if filter.DueOnly {
		query = query.Where(squirrel.LtOrEq{"due_at": time.Now().UTC()})
	}
	if filter.LearningOnly {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"is_learning": true},
			squirrel.Lt{"interval_days": 1},
			squirrel.Eq{"repetitions": 0},
		})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build card list query: %v", err)
		return nil, err
	}

	return db.queryCards(ctx, sqlStr, args...)
}

// DueCards returns all cards due at or before now for one learner. Order is
// not significant; the review queue re-sorts.
func (db *DB) DueCards(ctx context.Context, learnerID int64, now time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("fetching due cards: learner_id=%d", learnerID)

	return db.queryCards(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE learner_id = ? AND due_at <= ?
`, learnerID, now)
}

func (db *DB) CountDue(ctx context.Context, learnerID int64, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("db")

	var count int
	err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM cards WHERE learner_id = ? AND due_at <= ?
`, learnerID, now).Scan(&count)
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return 0, err
	}
	log.Debug("due count: learner_id=%d, count=%d", learnerID, count)
	return count, nil
}

func (db *DB) queryCards(ctx context.Context, sqlStr string, args ...any) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("db")

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows.Scan)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func scanCard(scan func(...any) error) (*models.Card, error) {
	var c models.Card
	var alts string
	var lastReviewed sql.NullTime
	err := scan(&c.ID, &c.LearnerID, &c.Term, &c.Definition, &c.ReviewType, &alts,
		&c.IntervalDays, &c.EaseFactor, &c.Repetitions, &c.LearningStep, &c.IsLearning,
		&c.DueAt, &lastReviewed, &c.TotalReviews, &c.CorrectAnswers, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		c.LastReviewedAt = &t
	}
	if alts != "" {
		if err := json.Unmarshal([]byte(alts), &c.AcceptableAnswers); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func marshalAnswers(answers []string) (string, error) {
	if answers == nil {
		answers = []string{}
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
