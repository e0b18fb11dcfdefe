package services

import (
	"context"
	"strings"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

// LearnerService manages learner accounts.
type LearnerService interface {
	CreateLearner(ctx context.Context, name string) (*models.Learner, error)
	GetLearner(ctx context.Context, id int64) (*models.Learner, error)
	ListLearners(ctx context.Context) ([]models.Learner, error)
	DeleteLearner(ctx context.Context, id int64) error
}

type learnerService struct {
	db *db.DB
}

// NewLearnerService creates a new LearnerService.
func NewLearnerService(database *db.DB) LearnerService {
	return &learnerService{db: database}
}

func (s *learnerService) CreateLearner(ctx context.Context, name string) (*models.Learner, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "must not be empty")
	}

	learner, err := s.db.UpsertLearner(ctx, name)
	if err != nil {
		log.Error("failed to create learner: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return learner, nil
}

func (s *learnerService) GetLearner(ctx context.Context, id int64) (*models.Learner, error) {
	learner, err := s.db.GetLearner(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if learner == nil {
		return nil, errors.NewNotFoundError("learner", id)
	}
	return learner, nil
}

func (s *learnerService) ListLearners(ctx context.Context) ([]models.Learner, error) {
	learners, err := s.db.ListLearners(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return learners, nil
}

func (s *learnerService) DeleteLearner(ctx context.Context, id int64) error {
	if err := s.db.DeleteLearner(ctx, id); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}
