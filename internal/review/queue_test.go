package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/review"
)

type fakeStore struct {
	cards []models.Card
}

func (f *fakeStore) DueCards(ctx context.Context, learnerID int64, now time.Time) ([]models.Card, error) {
	var due []models.Card
	for _, c := range f.cards {
		if c.LearnerID == learnerID && !c.DueAt.After(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

func (f *fakeStore) CountDue(ctx context.Context, learnerID int64, now time.Time) (int, error) {
	due, _ := f.DueCards(ctx, learnerID, now)
	return len(due), nil
}

func card(id int64, learning bool, dueOffset time.Duration, now time.Time) models.Card {
	return models.Card{
		ID:           id,
		LearnerID:    1,
		IsLearning:   learning,
		IntervalDays: 5,
		Repetitions:  2,
		DueAt:        now.Add(dueOffset),
	}
}

func TestListDue_LearningFirstThenDueAt(t *testing.T) {
	now := time.Now()
	store := &fakeStore{cards: []models.Card{
		card(1, false, -3*time.Hour, now),
		card(2, true, -1*time.Hour, now),
		card(3, false, -5*time.Hour, now),
		card(4, true, -2*time.Hour, now),
		card(5, false, time.Hour, now), // not due
	}}
	q := review.NewQueue(store)

	due, err := q.ListDue(context.Background(), 1, now)
	require.NoError(t, err)

	var ids []int64
	for _, c := range due {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{4, 2, 3, 1}, ids, "learning cards first, then ascending due time")
}

func TestListDue_NeverReturnsFutureCards(t *testing.T) {
	now := time.Now()
	store := &fakeStore{cards: []models.Card{
		card(1, false, time.Minute, now),
		card(2, true, -time.Minute, now),
	}}
	q := review.NewQueue(store)

	due, err := q.ListDue(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.False(t, due[0].DueAt.After(now))

	count, err := q.CountDue(context.Background(), 1, now)
	require.NoError(t, err)
	assert.Equal(t, len(due), count, "count matches the listing")
}

func TestListLearning_BroadDefinition(t *testing.T) {
	now := time.Now()
	flagged := card(1, true, -time.Hour, now)
	subDay := card(2, false, -time.Hour, now)
	subDay.IntervalDays = 0.5
	zeroReps := card(3, false, -time.Hour, now)
	zeroReps.Repetitions = 0
	mature := card(4, false, -time.Hour, now)

	store := &fakeStore{cards: []models.Card{mature, zeroReps, subDay, flagged}}
	q := review.NewQueue(store)

	learning, err := q.ListLearning(context.Background(), 1, now)
	require.NoError(t, err)

	var ids []int64
	for _, c := range learning {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids, "inconsistent graduated cards count as learning")
}

func TestNext_ExcludesJustReviewedCard(t *testing.T) {
	now := time.Now()
	store := &fakeStore{cards: []models.Card{
		card(1, true, -time.Minute, now),
		card(2, true, -time.Second, now),
	}}
	q := review.NewQueue(store)

	head, remaining, err := q.Next(context.Background(), 1, now, 0)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, int64(1), head.ID)
	assert.Equal(t, 1, remaining)

	// Card 1 was just rated Again and is due again already; it must not be
	// re-presented within the session.
	head, remaining, err = q.Next(context.Background(), 1, now, 1)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, int64(2), head.ID)
	assert.Equal(t, 0, remaining)

	head, _, err = q.Next(context.Background(), 1, now.Add(-time.Hour), 0)
	require.NoError(t, err)
	assert.Nil(t, head, "nothing due yet")
}
