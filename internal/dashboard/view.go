package dashboard

import (
	"github.com/benvon/problem-dashboard/internal/completion"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/tags"
)

// Row is a problem as displayed: the source row plus its completion flag and split topics
type Row struct {
	models.Problem
	Completed bool     `json:"completed"`
	TopicList []string `json:"topicList"`
}

// View is the rendered state of one problem list
type View struct {
	Problems        []Row           `json:"problems"`
	Total           int             `json:"total"`
	Visible         int             `json:"visible"`
	Progress        models.Progress `json:"progress"`
	VisibleProgress models.Progress `json:"visibleProgress"`
	Warning         string          `json:"warning,omitempty"`
	Source          string          `json:"source,omitempty"`
}

// BuildView filters problems by the selected tags, sorts the visible rows and
// attaches completion flags. Progress covers the whole loaded list;
// VisibleProgress covers only the filtered rows.
func BuildView(problems []models.Problem, snapshot models.CompletedProblems, selected []string, field SortField, order Order) View {
	visible := Sort(tags.Filter(problems, selected), field, order)

	rows := make([]Row, len(visible))
	for i, p := range visible {
		rows[i] = Row{
			Problem:   p,
			Completed: completion.IsCompleted(p.Title, snapshot),
			TopicList: displayTopics(p.Topics),
		}
	}

	return View{
		Problems:        rows,
		Total:           len(problems),
		Visible:         len(visible),
		Progress:        ComputeProgress(problems, snapshot),
		VisibleProgress: ComputeProgress(visible, snapshot),
	}
}

func displayTopics(topics string) []string {
	out := make([]string, 0, 4)
	for _, t := range tags.Split(topics) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
