// Package parser reads plain-text card lists for bulk import. One card per
// line:
//
//	term :: definition
//	term :: definition | alternative | another alternative
//
// Blank lines and lines starting with # are skipped.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arlen/cardbox/internal/models"
)

const separator = "::"

// Parse extracts card drafts from r. Lines without a separator or with an
// empty side are reported as errors with their line number.
func Parse(r io.Reader) ([]models.CardDraft, error) {
	scanner := bufio.NewScanner(r)
	var drafts []models.CardDraft
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		term, rest, found := strings.Cut(line, separator)
		if !found {
			return nil, fmt.Errorf("line %d: missing %q separator", lineNo, separator)
		}

		term = strings.TrimSpace(term)
		parts := strings.Split(rest, "|")
		definition := strings.TrimSpace(parts[0])
		if term == "" || definition == "" {
			return nil, fmt.Errorf("line %d: empty term or definition", lineNo)
		}

		var alts []string
		for _, alt := range parts[1:] {
			if alt = strings.TrimSpace(alt); alt != "" {
				alts = append(alts, alt)
			}
		}

		drafts = append(drafts, models.CardDraft{
			Term:              term,
			Definition:        definition,
			AcceptableAnswers: alts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// ParseString is a convenience wrapper for request bodies already in memory.
func ParseString(s string) ([]models.CardDraft, error) {
	return Parse(strings.NewReader(s))
}
