package problems

import (
	"fmt"

	"github.com/benvon/problem-dashboard/internal/catalog"
	"github.com/benvon/problem-dashboard/internal/models"
)

const sampleLink = "https://leetcode.com/problems/two-sum/"

var sampleTopics = []string{
	"Array,Hash Table",
	"Dynamic Programming,String",
	"Tree,Depth-First Search",
	"Graph,Breadth-First Search",
	"Math,Binary Search",
	"Greedy,Two Pointers",
	"Stack,Queue",
	"Linked List,Recursion",
}

var sampleTitles = []string{
	"Two Sum",
	"Add Two Numbers",
	"Longest Substring Without Repeating Characters",
	"Median of Two Sorted Arrays",
	"Longest Palindromic Substring",
	"ZigZag Conversion",
	"Reverse Integer",
	"String to Integer (atoi)",
	"Palindrome Number",
	"Regular Expression Matching",
	"Container With Most Water",
	"Integer to Roman",
	"Roman to Integer",
	"3Sum",
	"3Sum Closest",
}

// SampleCount returns how many placeholder rows are generated for a duration
func SampleCount(duration string) int {
	switch duration {
	case catalog.DurationThirtyDays:
		return 8
	case catalog.DurationThreeMonths:
		return 12
	case catalog.DurationSixMonths:
		return 15
	default:
		return 20
	}
}

// SampleProblems generates placeholder rows for company and duration. Titles,
// topics and difficulty cycle by row index; frequency (1-100%) and acceptance
// (20-99%) come from intN, which must return a value in [0, n).
func SampleProblems(company, duration string, intN func(n int) int) []models.Problem {
	count := SampleCount(duration)
	out := make([]models.Problem, count)
	for i := range out {
		title := fmt.Sprintf("%s - %s", company, sampleTitles[i%len(sampleTitles)])
		out[i] = models.Problem{
			ID:             GenerateID(company, duration, title),
			Difficulty:     string(models.Difficulties[i%len(models.Difficulties)]),
			Title:          title,
			Frequency:      fmt.Sprintf("%d%%", intN(100)+1),
			AcceptanceRate: fmt.Sprintf("%d%%", intN(80)+20),
			Link:           sampleLink,
			Topics:         sampleTopics[i%len(sampleTopics)],
		}
	}
	return out
}
