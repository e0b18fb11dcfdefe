// Package review decides which cards are eligible now and in what order.
// It is a read-side policy over the card store: learning cards come first so
// a backlog of mature reviews cannot starve the short-interval steps.
package review

import (
	"context"
	"sort"
	"time"

	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

// Store is the query capability the queue needs from storage. Returned
// order is not trusted; the queue re-sorts.
type Store interface {
	DueCards(ctx context.Context, learnerID int64, now time.Time) ([]models.Card, error)
	CountDue(ctx context.Context, learnerID int64, now time.Time) (int, error)
}

type Queue struct {
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// CountDue returns the number of cards due at or before now.
func (q *Queue) CountDue(ctx context.Context, learnerID int64, now time.Time) (int, error) {
	return q.store.CountDue(ctx, learnerID, now)
}

// ListDue returns every due card, learning cards first, each group ordered
// by ascending due time.
func (q *Queue) ListDue(ctx context.Context, learnerID int64, now time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("review")

	cards, err := q.store.DueCards(ctx, learnerID, now)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].IsLearning != cards[j].IsLearning {
			return cards[i].IsLearning
		}
		return cards[i].DueAt.Before(cards[j].DueAt)
	})

	log.Debug("listed %d due cards for learner %d", len(cards), learnerID)
	return cards, nil
}

// ListLearning returns the due cards still in the learning phase, by the
// broad definition: flagged as learning, sub-day interval, or zero
// repetitions. Ordered by ascending due time.
func (q *Queue) ListLearning(ctx context.Context, learnerID int64, now time.Time) ([]models.Card, error) {
	cards, err := q.store.DueCards(ctx, learnerID, now)
	if err != nil {
		return nil, err
	}

	learning := cards[:0]
	for _, c := range cards {
		if c.IsLearning || c.IntervalDays < 1 || c.Repetitions == 0 {
			learning = append(learning, c)
		}
	}
	sort.SliceStable(learning, func(i, j int) bool {
		return learning[i].DueAt.Before(learning[j].DueAt)
	})
	return learning, nil
}

// Next returns the head of the due queue and how many other cards remain.
// excludeID removes a just-reviewed card by identity, so a card rated Again
// with a sub-minute interval is not re-presented immediately within the
// same session. Returns nil when nothing is due.
func (q *Queue) Next(ctx context.Context, learnerID int64, now time.Time, excludeID int64) (*models.Card, int, error) {
	cards, err := q.ListDue(ctx, learnerID, now)
	if err != nil {
		return nil, 0, err
	}

	if excludeID != 0 {
		filtered := cards[:0]
		for _, c := range cards {
			if c.ID != excludeID {
				filtered = append(filtered, c)
			}
		}
		cards = filtered
	}

	if len(cards) == 0 {
		return nil, 0, nil
	}
	head := cards[0]
	return &head, len(cards) - 1, nil
}
