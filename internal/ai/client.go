// Package ai wraps the OpenAI chat-completion API for answer scoring and
// card generation. Every failure mode (transport, timeout, malformed or
// out-of-contract output) surfaces as an error; callers fall back locally.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

// Config holds the OpenAI client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// New creates a Client. The API key must be set; model and timeout get
// defaults when empty.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     logger.Default().WithPrefix("ai"),
	}
}

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)
var jsonArrayRe = regexp.MustCompile(`\[[\s\S]*\]`)

// scorePayload mirrors the JSON object the model is instructed to return.
// Pointer fields distinguish absent values from zero values.
type scorePayload struct {
	Quality    *float64 `json:"quality"`
	Reasoning  string   `json:"reasoning"`
	Confidence *float64 `json:"confidence"`
	IsCorrect  *bool    `json:"isCorrect"`
}

// ScoreAnswer asks the model to grade a typed answer on the 0..3 quality
// scale. The returned quality is guaranteed to be an integer in range; any
// contract violation by the model is an error.
func (c *Client) ScoreAnswer(ctx context.Context, question, expected, submitted, reviewType string) (models.Score, error) {
	log := logger.FromContext(ctx).WithPrefix("ai")
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Debug("requesting AI score: model=%s, review_type=%s", c.model, reviewType)
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   300,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: scoringSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: scoringPrompt(question, expected, submitted, reviewType),
			},
		},
	})
	if err != nil {
		log.Warn("chat completion failed after %v: %v", time.Since(start), err)
		return models.Score{}, fmt.Errorf("score answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Score{}, fmt.Errorf("score answer: empty completion")
	}

	log.Debug("completion received in %v", time.Since(start))

	payload, err := parseScorePayload(resp.Choices[0].Message.Content)
	if err != nil {
		return models.Score{}, err
	}
	return validateScore(payload)
}

func parseScorePayload(content string) (scorePayload, error) {
	var payload scorePayload
	text := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		// Models sometimes wrap the object in prose; rescue the first
		// object-shaped span before giving up.
		match := jsonObjectRe.FindString(text)
		if match == "" {
			return payload, fmt.Errorf("parse AI score: no JSON object in response")
		}
		if err := json.Unmarshal([]byte(match), &payload); err != nil {
			return payload, fmt.Errorf("parse AI score: %w", err)
		}
	}
	return payload, nil
}

// validateScore enforces the collaborator contract: quality must be an
// integer 0..3. Confidence, reasoning and correctness are repaired with
// defaults when missing or malformed.
func validateScore(p scorePayload) (models.Score, error) {
	if p.Quality == nil {
		return models.Score{}, fmt.Errorf("invalid AI score: missing quality")
	}
	q := *p.Quality
	if q != float64(int(q)) || q < 0 || q > 3 {
		return models.Score{}, fmt.Errorf("invalid AI score: quality %v out of range", q)
	}

	score := models.Score{
		Quality:    int(q),
		Confidence: 0.8,
		Reasoning:  "AI assessment completed",
		AIGraded:   true,
	}
	if p.Confidence != nil && *p.Confidence >= 0 && *p.Confidence <= 1 {
		score.Confidence = *p.Confidence
	}
	if p.Reasoning != "" {
		score.Reasoning = p.Reasoning
	}
	if p.IsCorrect != nil {
		score.IsCorrect = *p.IsCorrect
	} else {
		score.IsCorrect = score.Quality >= 2
	}
	return score, nil
}

// maxExtractChars keeps generation input under the model's context budget.
const maxExtractChars = 8000

// ExtractCards generates term/definition drafts from free text.
func (c *Client) ExtractCards(ctx context.Context, text string) ([]models.CardDraft, error) {
	log := logger.FromContext(ctx).WithPrefix("ai")
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if len(text) > maxExtractChars {
		text = text[:maxExtractChars] + "..."
	}

	log.Debug("requesting card extraction: model=%s, text_len=%d", c.model, len(text))
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   2000,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: extractionPrompt(text),
			},
		},
	})
	if err != nil {
		log.Warn("card extraction failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("extract cards: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extract cards: empty completion")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var drafts []models.CardDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		match := jsonArrayRe.FindString(content)
		if match == "" {
			return nil, fmt.Errorf("parse extracted cards: no JSON array in response")
		}
		if err := json.Unmarshal([]byte(match), &drafts); err != nil {
			return nil, fmt.Errorf("parse extracted cards: %w", err)
		}
	}

	valid := drafts[:0]
	for _, d := range drafts {
		d.Term = strings.TrimSpace(d.Term)
		d.Definition = strings.TrimSpace(d.Definition)
		if d.Term == "" || d.Definition == "" {
			continue
		}
		valid = append(valid, d)
	}

	log.Info("extracted %d cards in %v", len(valid), time.Since(start))
	return valid, nil
}
