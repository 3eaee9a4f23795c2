package models

// Difficulty is the problem difficulty label as it appears in the CSV data
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties is the fixed difficulty cycle used by sample data
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Weight returns a numeric weight for sorting by difficulty.
// Unknown labels weigh 0 and are placed last by the sorter.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// Problem is one row of a company problem list.
// Frequency and AcceptanceRate are kept as the percentage-like text from the source.
type Problem struct {
	ID             string `json:"id"`
	Difficulty     string `json:"difficulty"`
	Title          string `json:"title"`
	Frequency      string `json:"frequency"`
	AcceptanceRate string `json:"acceptanceRate"`
	Link           string `json:"link"`
	Topics         string `json:"topics"`
}

// CompanyData describes a company and the durations it has problem lists for
type CompanyData struct {
	Name      string   `json:"name" yaml:"name"`
	Durations []string `json:"durations" yaml:"durations"`
}

// CompletedProblems maps a canonical problem title to its completion flag.
// A missing key means not completed.
type CompletedProblems map[string]bool
