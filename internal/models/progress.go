package models

// Progress summarizes how many problems of a list are completed
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"` // Rounded, 0 when Total is 0
}
