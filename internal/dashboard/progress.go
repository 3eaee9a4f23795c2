package dashboard

import (
	"math"

	"github.com/benvon/problem-dashboard/internal/completion"
	"github.com/benvon/problem-dashboard/internal/models"
)

// ComputeProgress counts completed problems and the rounded completion percentage
func ComputeProgress(problems []models.Problem, snapshot models.CompletedProblems) models.Progress {
	p := models.Progress{
		Completed: completion.CountCompleted(problems, snapshot),
		Total:     len(problems),
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}
