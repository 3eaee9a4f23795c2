package models

import (
	"reflect"
	"testing"
)

func TestDifficultyWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    Difficulty
		want int
	}{
		{DifficultyEasy, 1},
		{DifficultyMedium, 2},
		{DifficultyHard, 3},
		{"EASY", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := tt.d.Weight(); got != tt.want {
			t.Errorf("Difficulty(%q).Weight() = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestPartialSettingsResolve(t *testing.T) {
	t.Parallel()

	company := "Google"
	hide := false
	tags := []string{"Array"}

	got := PartialSettings{
		SelectedCompany: &company,
		SelectedTags:    tags,
		ShowTags:        &hide,
	}.Resolve(DefaultSettings())

	want := AppSettings{
		SelectedCompany: "Google",
		SelectedTags:    []string{"Array"},
		ShowTags:        false,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}

	tags[0] = "Tree"
	if got.SelectedTags[0] != "Array" {
		t.Error("Resolve should copy SelectedTags")
	}

	if empty := (PartialSettings{}).Resolve(DefaultSettings()); !empty.ShowTags || empty.SelectedTags == nil {
		t.Errorf("defaults = %+v", empty)
	}
}
