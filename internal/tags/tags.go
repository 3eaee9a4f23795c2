// Package tags implements topic filtering and the tag picker suggestions.
package tags

import (
	"strings"

	"github.com/benvon/problem-dashboard/internal/models"
)

// Canonical is the fixed tag vocabulary offered by the tag picker
var Canonical = []string{
	"Array",
	"Backtracking",
	"Binary Indexed Tree",
	"Binary Search",
	"Binary Search Tree",
	"Binary Tree",
	"Bit Manipulation",
	"Breadth-First Search",
	"Bucket Sort",
	"Combinatorics",
	"Counting",
	"Data Stream",
	"Depth-First Search",
	"Design",
	"Divide and Conquer",
	"Dynamic Programming",
	"Game Theory",
	"Geometry",
	"Graph",
	"Greedy",
	"Hash Function",
	"Hash Table",
	"Heap (Priority Queue)",
	"Interactive",
	"Linked List",
	"Math",
	"Matrix",
	"Memoization",
	"Merge Sort",
	"Monotonic Queue",
	"Monotonic Stack",
	"Number Theory",
	"Ordered Set",
	"Prefix Sum",
	"Queue",
	"Quickselect",
	"Randomized",
	"Recursion",
	"Rolling Hash",
	"Segment Tree",
	"Shortest Path",
	"Simulation",
	"Sliding Window",
	"Sorting",
	"Stack",
	"String",
	"String Matching",
	"Topological Sort",
	"Tree",
	"Trie",
	"Two Pointers",
	"Union Find",
}

// Split splits a comma-separated topic list and trims every entry
func Split(topics string) []string {
	parts := strings.Split(topics, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Matches reports whether any selected tag matches any of the problem's topics.
// Matching is case-insensitive substring containment in either direction.
func Matches(topics string, selected []string) bool {
	problemTags := Split(topics)
	for _, sel := range selected {
		s := strings.ToLower(sel)
		for _, pt := range problemTags {
			p := strings.ToLower(pt)
			if strings.Contains(s, p) || strings.Contains(p, s) {
				return true
			}
		}
	}
	return false
}

// Filter returns the problems matching at least one selected tag, in input
// order. With no selected tags the input slice is returned unchanged.
func Filter(problems []models.Problem, selected []string) []models.Problem {
	if len(selected) == 0 {
		return problems
	}

	out := make([]models.Problem, 0, len(problems))
	for _, p := range problems {
		if Matches(p.Topics, selected) {
			out = append(out, p)
		}
	}
	return out
}

// Suggest returns the available tags containing search (case-insensitive)
// that are not already selected, in available order.
func Suggest(available, selected []string, search string) []string {
	term := strings.ToLower(search)
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	out := make([]string, 0, len(available))
	for _, tag := range available {
		if chosen[tag] {
			continue
		}
		if strings.Contains(strings.ToLower(tag), term) {
			out = append(out, tag)
		}
	}
	return out
}

// Add appends tag to selected unless it is already present
func Add(selected []string, tag string) []string {
	for _, s := range selected {
		if s == tag {
			return selected
		}
	}
	return append(append([]string(nil), selected...), tag)
}

// Remove returns selected without tag
func Remove(selected []string, tag string) []string {
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if s != tag {
			out = append(out, s)
		}
	}
	return out
}
