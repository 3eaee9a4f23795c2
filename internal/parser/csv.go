// Package parser turns company problem CSV text into problem rows.
//
// The format is deliberately loose: a double quote toggles quoted mode and is
// dropped, commas inside quoted mode are kept, and there is no escaped-quote
// handling. Parsing never fails; malformed input yields best-effort rows.
package parser

import (
	"strings"

	"github.com/benvon/problem-dashboard/internal/models"
)

// Column order of the source files
const (
	colDifficulty = iota
	colTitle
	colFrequency
	colAcceptanceRate
	colLink
	colTopics
)

// Parse converts CSV text into problems without IDs. The text is trimmed, the
// first line is treated as a header and discarded without validation.
func Parse(text string) []models.Problem {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) <= 1 {
		return []models.Problem{}
	}

	problems := make([]models.Problem, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := SplitLine(line)
		problems = append(problems, models.Problem{
			Difficulty:     field(values, colDifficulty),
			Title:          field(values, colTitle),
			Frequency:      field(values, colFrequency),
			AcceptanceRate: field(values, colAcceptanceRate),
			Link:           field(values, colLink),
			Topics:         field(values, colTopics),
		})
	}
	return problems
}

// SplitLine splits one CSV line on commas outside quoted sections.
// Every value is trimmed of surrounding whitespace. The delimiters are ASCII,
// so the line is scanned bytewise and other bytes pass through unchanged.
func SplitLine(line string) []string {
	var (
		result   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	return append(result, strings.TrimSpace(current.String()))
}

func field(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
