package dashboard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/benvon/problem-dashboard/internal/models"
)

// SortField selects the column the table is ordered by
type SortField string

const (
	SortNone       SortField = ""
	SortDifficulty SortField = "difficulty"
	SortTitle      SortField = "title"
	SortFrequency  SortField = "frequency"
	SortAcceptance SortField = "acceptance"
)

// Order is the sort direction
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseSort validates a sort field and order. Empty values mean CSV order and ascending.
func ParseSort(field, order string) (SortField, Order, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	switch f {
	case SortNone, SortDifficulty, SortTitle, SortFrequency, SortAcceptance:
	default:
		return "", "", fmt.Errorf("unknown sort field %q", field)
	}

	o := Order(strings.ToLower(strings.TrimSpace(order)))
	switch o {
	case "":
		o = OrderAsc
	case OrderAsc, OrderDesc:
	default:
		return "", "", fmt.Errorf("unknown sort order %q", order)
	}
	return f, o, nil
}

// Sort returns a stably sorted copy of problems. Rows whose sort value is
// unknown or unparseable go last in either direction.
func Sort(problems []models.Problem, field SortField, order Order) []models.Problem {
	out := slices.Clone(problems)
	if field == SortNone {
		return out
	}

	slices.SortStableFunc(out, func(a, b models.Problem) int {
		ka, okA := sortKey(a, field)
		kb, okB := sortKey(b, field)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}

		var c int
		if field == SortTitle {
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		} else {
			c = compareFloat(ka, kb)
		}
		if order == OrderDesc {
			c = -c
		}
		return c
	})
	return out
}

func sortKey(p models.Problem, field SortField) (float64, bool) {
	switch field {
	case SortDifficulty:
		w := DifficultyOf(p).Weight()
		return float64(w), w > 0
	case SortFrequency:
		return ParsePercent(p.Frequency)
	case SortAcceptance:
		return ParsePercent(p.AcceptanceRate)
	default:
		return 0, true
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DifficultyOf normalizes the row difficulty ("EASY", "easy", "Easy") to a Difficulty label
func DifficultyOf(p models.Problem) models.Difficulty {
	for _, d := range models.Difficulties {
		if strings.EqualFold(p.Difficulty, string(d)) {
			return d
		}
	}
	return models.Difficulty(p.Difficulty)
}

// ParsePercent reads the leading number of a percentage-like string such as "49.1%"
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && s[end] == '-')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
