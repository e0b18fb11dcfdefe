package worker

import (
	"context"
	"time"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/srs"
)

// CardExtractor turns free-form study text into card drafts.
type CardExtractor interface {
	ExtractCards(ctx context.Context, text string) ([]models.CardDraft, error)
}

// GenerateCardsJob extracts flashcards from a block of text and inserts
// them as new learning cards for the learner.
type GenerateCardsJob struct {
	DB        *db.DB
	Extractor CardExtractor
	LearnerID int64
	Text      string
}

func (j *GenerateCardsJob) Name() string { return "generate_cards" }

func (j *GenerateCardsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("learner_id", j.LearnerID)
	log.Info("generating cards from %d chars of text", len(j.Text))

	drafts, err := j.Extractor.ExtractCards(ctx, j.Text)
	if err != nil {
		log.Error("card extraction failed: %v", err)
		return err
	}
	if len(drafts) == 0 {
		log.Info("no cards extracted")
		return nil
	}

	now := time.Now().UTC()
	state := srs.NewState(now)
	var inserted int
	for _, draft := range drafts {
		if ctx.Err() != nil {
			log.Warn("generation cancelled: %v", ctx.Err())
			return ctx.Err()
		}
		card := models.Card{
			LearnerID:         j.LearnerID,
			Term:              draft.Term,
			Definition:        draft.Definition,
			ReviewType:        models.ReviewTypeRecognition,
			AcceptableAnswers: draft.AcceptableAnswers,
			IntervalDays:      state.IntervalDays,
			EaseFactor:        state.EaseFactor,
			LearningStep:      state.LearningStep,
			IsLearning:        state.IsLearning,
			DueAt:             state.DueAt,
		}
		if _, err := j.DB.InsertCard(ctx, card); err != nil {
			log.Error("failed to insert generated card %q: %v", draft.Term, err)
			continue
		}
		inserted++
	}

	log.Info("inserted %d of %d generated cards", inserted, len(drafts))
	return nil
}
