package problems

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// GenerateID builds the row identifier from company, duration and title.
// Every character other than ASCII letters, digits and '-' becomes '-' and the
// result is lowercased. Distinct titles can collapse to the same ID.
func GenerateID(company, duration, title string) string {
	return strings.ToLower(nonSlug.ReplaceAllString(company+"-"+duration+"-"+title, "-"))
}

// DuplicateIDs returns every ID that appears more than once, in first-seen order
func DuplicateIDs(ids []string) []string {
	seen := make(map[string]int, len(ids))
	var dups []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
