package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/testutil"
)

type LearnersSuite struct {
	suite.Suite
	db *db.DB
}

func (s *LearnersSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
}

func (s *LearnersSuite) TestUpsertIsIdempotent() {
	ctx := context.Background()

	first, err := s.db.UpsertLearner(ctx, "ada")
	s.Require().NoError(err)
	s.Assert().Greater(first.ID, int64(0))

	second, err := s.db.UpsertLearner(ctx, "ada")
	s.Require().NoError(err)
	s.Assert().Equal(first.ID, second.ID)

	learners, err := s.db.ListLearners(ctx)
	s.Require().NoError(err)
	s.Assert().Len(learners, 1)
}

func (s *LearnersSuite) TestGetLearner_Missing() {
	learner, err := s.db.GetLearner(context.Background(), 42)
	s.Require().NoError(err)
	s.Assert().Nil(learner)
}

func (s *LearnersSuite) TestDeleteLearner_CascadesToCards() {
	ctx := context.Background()

	learner, err := s.db.UpsertLearner(ctx, "ada")
	s.Require().NoError(err)

	_, err = s.db.InsertCard(ctx, models.Card{
		LearnerID:    learner.ID,
		Term:         "osmosis",
		Definition:   "movement of water across a membrane",
		ReviewType:   models.ReviewTypeRecognition,
		IntervalDays: 1.0 / 1440,
		EaseFactor:   2.5,
		IsLearning:   true,
		DueAt:        time.Now().UTC(),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.db.DeleteLearner(ctx, learner.ID))

	count, err := s.db.CountDue(ctx, learner.ID, time.Now().UTC().Add(time.Hour))
	s.Require().NoError(err)
	s.Assert().Equal(0, count)
}

func TestLearnersSuite(t *testing.T) {
	suite.Run(t, new(LearnersSuite))
}
