package models

// AppSettings holds the persisted UI preferences
type AppSettings struct {
	SelectedCompany  string   `json:"selectedCompany"`
	SelectedDuration string   `json:"selectedDuration"`
	SelectedTags     []string `json:"selectedTags"`
	ShowTags         bool     `json:"showTags"`
}

// PartialSettings is AppSettings where every field may be absent
type PartialSettings struct {
	SelectedCompany  *string  `json:"selectedCompany,omitempty"`
	SelectedDuration *string  `json:"selectedDuration,omitempty"`
	SelectedTags     []string `json:"selectedTags,omitempty"`
	ShowTags         *bool    `json:"showTags,omitempty"`
}

// Resolve fills the absent fields of p from defaults
func (p PartialSettings) Resolve(defaults AppSettings) AppSettings {
	out := defaults
	if p.SelectedCompany != nil {
		out.SelectedCompany = *p.SelectedCompany
	}
	if p.SelectedDuration != nil {
		out.SelectedDuration = *p.SelectedDuration
	}
	if p.SelectedTags != nil {
		out.SelectedTags = append([]string(nil), p.SelectedTags...)
	}
	if p.ShowTags != nil {
		out.ShowTags = *p.ShowTags
	}
	return out
}

// DefaultSettings returns the settings used before anything was stored
func DefaultSettings() AppSettings {
	return AppSettings{
		SelectedTags: []string{},
		ShowTags:     true,
	}
}
