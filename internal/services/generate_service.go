package services

import (
	"context"
	"strings"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/worker"
)

// GenerateService queues background AI card generation from study text.
type GenerateService interface {
	GenerateFromText(ctx context.Context, learnerID int64, text string) error
	QueueSize() int
}

type generateService struct {
	db        *db.DB
	extractor worker.CardExtractor
	pool      *worker.Pool
}

// NewGenerateService creates a new GenerateService. The extractor may be
// nil when no AI backend is configured.
func NewGenerateService(database *db.DB, extractor worker.CardExtractor, pool *worker.Pool) GenerateService {
	return &generateService{db: database, extractor: extractor, pool: pool}
}

func (s *generateService) GenerateFromText(ctx context.Context, learnerID int64, text string) error {
	if s.extractor == nil {
		return errors.NewBadRequestError("AI card generation is not configured")
	}
	if strings.TrimSpace(text) == "" {
		return errors.NewValidationError("text", "must not be empty")
	}

	job := &worker.GenerateCardsJob{
		DB:        s.db,
		Extractor: s.extractor,
		LearnerID: learnerID,
		Text:      text,
	}
	if !s.pool.TrySubmit(job) {
		return errors.NewBadRequestError("generation queue is full, try again later")
	}

	logger.FromContext(ctx).Info("queued card generation for learner %d", learnerID)
	return nil
}

func (s *generateService) QueueSize() int {
	return s.pool.QueueSize()
}
