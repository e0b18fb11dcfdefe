package services

import (
	"context"
	"strings"
	"time"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/parser"
	"github.com/arlen/cardbox/internal/srs"
)

// CardService handles card CRUD and bulk import.
type CardService interface {
	CreateCard(ctx context.Context, learnerID int64, draft models.CardDraft, reviewType string) (*models.Card, error)
	GetCard(ctx context.Context, id, learnerID int64) (*models.Card, error)
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	UpdateCard(ctx context.Context, id, learnerID int64, draft models.CardDraft, reviewType string) (*models.Card, error)
	DeleteCard(ctx context.Context, id, learnerID int64) error
	ImportCards(ctx context.Context, learnerID int64, text string) ([]models.Card, error)
	DeckStats(ctx context.Context, learnerID int64) (*models.DeckStats, error)
}

type cardService struct {
	db *db.DB
}

// NewCardService creates a new CardService.
func NewCardService(database *db.DB) CardService {
	return &cardService{db: database}
}

func (s *cardService) CreateCard(ctx context.Context, learnerID int64, draft models.CardDraft, reviewType string) (*models.Card, error) {
	log := logger.FromContext(ctx)

	card, err := newCard(learnerID, draft, reviewType, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	id, err := s.db.InsertCard(ctx, card)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetCard(ctx, id, learnerID)
}

func (s *cardService) GetCard(ctx context.Context, id, learnerID int64) (*models.Card, error) {
	card, err := s.db.GetCard(ctx, id, learnerID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	return card, nil
}

func (s *cardService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	cards, err := s.db.ListCards(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *cardService) UpdateCard(ctx context.Context, id, learnerID int64, draft models.CardDraft, reviewType string) (*models.Card, error) {
	card, err := s.GetCard(ctx, id, learnerID)
	if err != nil {
		return nil, err
	}

	if draft.Term = strings.TrimSpace(draft.Term); draft.Term == "" {
		return nil, errors.NewValidationError("term", "must not be empty")
	}
	if draft.Definition = strings.TrimSpace(draft.Definition); draft.Definition == "" {
		return nil, errors.NewValidationError("definition", "must not be empty")
	}
	reviewType, err = normalizeReviewType(reviewType)
	if err != nil {
		return nil, err
	}

	card.Term = draft.Term
	card.Definition = draft.Definition
	card.ReviewType = reviewType
	card.AcceptableAnswers = draft.AcceptableAnswers

	if err := s.db.UpdateCardContent(ctx, *card); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *cardService) DeleteCard(ctx context.Context, id, learnerID int64) error {
	deleted, err := s.db.DeleteCard(ctx, id, learnerID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !deleted {
		return errors.NewNotFoundError("card", id)
	}
	return nil
}

// ImportCards parses a plain-text card list and inserts every draft as a
// new learning card.
func (s *cardService) ImportCards(ctx context.Context, learnerID int64, text string) ([]models.Card, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, errors.NewValidationError("text", "must not be empty")
	}

	drafts, err := parser.ParseString(text)
	if err != nil {
		return nil, errors.NewValidationError("text", err.Error())
	}
	if len(drafts) == 0 {
		return nil, errors.NewValidationError("text", "contains no cards")
	}

	now := time.Now().UTC()
	var cards []models.Card
	for _, draft := range drafts {
		card, err := newCard(learnerID, draft, models.ReviewTypeRecognition, now)
		if err != nil {
			return nil, err
		}
		id, err := s.db.InsertCard(ctx, card)
		if err != nil {
			log.Error("failed to insert imported card: %v", err)
			return nil, errors.NewInternalError(err)
		}
		card.ID = id
		cards = append(cards, card)
	}

	log.Info("imported %d cards for learner %d", len(cards), learnerID)
	return cards, nil
}

func (s *cardService) DeckStats(ctx context.Context, learnerID int64) (*models.DeckStats, error) {
	stats, err := s.db.DeckStats(ctx, learnerID, time.Now().UTC())
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

// newCard validates a draft and attaches fresh scheduling state.
func newCard(learnerID int64, draft models.CardDraft, reviewType string, now time.Time) (models.Card, error) {
	term := strings.TrimSpace(draft.Term)
	definition := strings.TrimSpace(draft.Definition)
	if term == "" {
		return models.Card{}, errors.NewValidationError("term", "must not be empty")
	}
	if definition == "" {
		return models.Card{}, errors.NewValidationError("definition", "must not be empty")
	}
	reviewType, err := normalizeReviewType(reviewType)
	if err != nil {
		return models.Card{}, err
	}

	card := models.Card{
		LearnerID:         learnerID,
		Term:              term,
		Definition:        definition,
		ReviewType:        reviewType,
		AcceptableAnswers: draft.AcceptableAnswers,
	}
	applyState(&card, srs.NewState(now))
	return card, nil
}

func normalizeReviewType(reviewType string) (string, error) {
	switch reviewType {
	case "":
		return models.ReviewTypeRecognition, nil
	case models.ReviewTypeRecognition, models.ReviewTypeRecall:
		return reviewType, nil
	default:
		return "", errors.NewValidationError("review_type", "must be recognition or recall")
	}
}

// stateOf extracts the scheduling subset the scheduler operates on.
func stateOf(c models.Card) srs.State {
	return srs.State{
		IntervalDays:   c.IntervalDays,
		EaseFactor:     c.EaseFactor,
		Repetitions:    c.Repetitions,
		LearningStep:   c.LearningStep,
		IsLearning:     c.IsLearning,
		DueAt:          c.DueAt,
		LastReviewedAt: c.LastReviewedAt,
	}
}

func applyState(c *models.Card, s srs.State) {
	c.IntervalDays = s.IntervalDays
	c.EaseFactor = s.EaseFactor
	c.Repetitions = s.Repetitions
	c.LearningStep = s.LearningStep
	c.IsLearning = s.IsLearning
	c.DueAt = s.DueAt
	c.LastReviewedAt = s.LastReviewedAt
}
