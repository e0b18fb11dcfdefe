// Package grader judges typed answers. The local matcher is deterministic
// and dependency-free; Scorer layers an AI collaborator on top of it and
// falls back to the local path on any collaborator failure.
package grader

import (
	"context"
	"strings"

	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
	"github.com/arlen/cardbox/internal/srs"
)

const punctuation = ".,!?;:"

// Normalize prepares answer text for comparison: lower-case, trimmed,
// punctuation stripped, whitespace runs collapsed. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokens splits normalized text into words longer than two characters.
func tokens(normalized string) []string {
	var out []string
	for _, w := range strings.Split(normalized, " ") {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// overlapRatio is the fraction of expected tokens matched by some submitted
// token, where matching is substring containment in either direction.
// Returns -1 when either side has no usable tokens.
func overlapRatio(expected, submitted string) float64 {
	expectedWords := tokens(expected)
	submittedWords := tokens(submitted)
	if len(expectedWords) == 0 || len(submittedWords) == 0 {
		return -1
	}

	matched := 0
	for _, w := range submittedWords {
		for _, e := range expectedWords {
			if strings.Contains(e, w) || strings.Contains(w, e) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(expectedWords))
}

// Evaluate reports whether a submitted answer counts as correct: exact match
// after normalization, a match against any acceptable alternative, or token
// overlap of at least 70% of the expected tokens.
func Evaluate(expected string, alternatives []string, submitted string) bool {
	sub := Normalize(submitted)
	if sub == "" {
		return false
	}
	exp := Normalize(expected)

	if sub == exp {
		return true
	}
	for _, alt := range alternatives {
		if Normalize(alt) == sub {
			return true
		}
	}
	return overlapRatio(exp, sub) >= 0.7
}

// FallbackScore grades an answer on the 0..3 quality scale without the AI
// collaborator. Exact match is Easy; containment either direction is a
// confident Good; otherwise token overlap maps to Good/Hard/Again.
func FallbackScore(expected, submitted string) models.Score {
	sub := Normalize(submitted)
	if sub == "" {
		return fallback(int(srs.Again), false, 0.6, "no answer provided")
	}
	exp := Normalize(expected)

	if sub == exp {
		return fallback(int(srs.Easy), true, 0.9, "exact match")
	}
	if strings.Contains(exp, sub) || strings.Contains(sub, exp) {
		return fallback(int(srs.Good), true, 0.75, "partial match found")
	}

	switch ratio := overlapRatio(exp, sub); {
	case ratio < 0:
		return fallback(int(srs.Again), false, 0.6, "insufficient content to evaluate")
	case ratio >= 0.7:
		return fallback(int(srs.Good), true, 0.6, "good word overlap (70%+)")
	case ratio >= 0.4:
		return fallback(int(srs.Hard), false, 0.6, "some word overlap (40-70%)")
	default:
		return fallback(int(srs.Again), false, 0.6, "low word overlap (<40%)")
	}
}

func fallback(quality int, correct bool, confidence float64, reason string) models.Score {
	return models.Score{
		Quality:    quality,
		IsCorrect:  correct,
		Confidence: confidence,
		Reasoning:  reason,
		AIGraded:   false,
	}
}

// AIScorer is the external grading collaborator. Implementations must return
// an error for any transport, timeout, or contract violation; Scorer treats
// every failure mode identically.
type AIScorer interface {
	ScoreAnswer(ctx context.Context, question, expected, submitted, reviewType string) (models.Score, error)
}

// Scorer grades answers with an optional AI collaborator, falling back to
// the deterministic matcher when the collaborator is absent or fails.
type Scorer struct {
	ai AIScorer
}

// NewScorer creates a Scorer. ai may be nil, in which case every score
// comes from the local path.
func NewScorer(ai AIScorer) *Scorer {
	return &Scorer{ai: ai}
}

// Score grades a typed answer. One AI attempt, no retries; any failure is
// recovered locally and annotated as not AI-graded.
func (s *Scorer) Score(ctx context.Context, question, expected, submitted, reviewType string) models.Score {
	log := logger.FromContext(ctx).WithPrefix("grader")

	if s.ai == nil {
		log.Debug("no AI scorer configured, using local grading")
		return FallbackScore(expected, submitted)
	}

	score, err := s.ai.ScoreAnswer(ctx, question, expected, submitted, reviewType)
	if err != nil {
		log.Warn("AI scoring failed, using local grading: %v", err)
		fb := FallbackScore(expected, submitted)
		fb.Reasoning = "AI scoring unavailable, used fallback method: " + fb.Reasoning
		return fb
	}

	log.Debug("AI scored answer: quality=%d, confidence=%.2f", score.Quality, score.Confidence)
	return score
}
