package ai

import (
	"fmt"

	"github.com/arlen/cardbox/internal/models"
)

const scoringSystemPrompt = "You are an expert educational assessment AI that evaluates student responses fairly and accurately. Always respond with valid JSON only."

func scoringPrompt(question, expected, submitted, reviewType string) string {
	direction := "Show term -> recall definition"
	if reviewType == models.ReviewTypeRecall {
		direction = "Show definition -> recall term"
	}

	return fmt.Sprintf(`Evaluate a student's flashcard response using the spaced repetition quality scale:

- 0 (Again): Completely wrong, no understanding shown
- 1 (Hard): Partially correct but significant errors or missing key information
- 2 (Good): Mostly correct with minor errors or slight imprecision
- 3 (Easy): Perfect or near-perfect answer showing complete understanding

Context:
- Review Type: %s
- Question: %q
- Correct Answer: %q
- Student's Answer: %q

Guidelines:
- Be generous with partial credit for conceptually correct answers
- Focus on understanding over exact wording
- Consider synonyms and alternative phrasings
- Account for minor spelling and grammar mistakes

Respond with ONLY a JSON object in this exact format:
{"quality": 0, "reasoning": "brief explanation", "confidence": 0.95, "isCorrect": false}

Confidence is 0.0-1.0 representing how certain you are about the scoring.`, direction, question, expected, submitted)
}

const extractionSystemPrompt = "You are a helpful assistant that creates educational flashcards. You always respond with valid JSON arrays containing flashcard objects."

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text and extract the key concepts, terms, definitions and facts worth studying.

Create flashcards in this JSON format:
[{"term": "concept or question", "definition": "clear, concise explanation or answer"}]

Guidelines:
- Make terms clear and specific
- Keep definitions concise but comprehensive (1-3 sentences)
- Aim for 10-20 flashcards depending on content richness
- Use simple, clear language

Text to analyze:
%s

Return only the JSON array, no additional text:`, text)
}
