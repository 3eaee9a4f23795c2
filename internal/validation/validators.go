package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/problem-dashboard/internal/catalog"
	"github.com/benvon/problem-dashboard/internal/settings"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Registration only fails on programmer error
	if err := Validate.RegisterValidation("duration", validateDuration); err != nil {
		panic(fmt.Sprintf("failed to register duration validator: %v", err))
	}
	if err := Validate.RegisterValidation("settings_key", validateSettingsKey); err != nil {
		panic(fmt.Sprintf("failed to register settings_key validator: %v", err))
	}
}

// ToggleRequest is the body of POST /api/v1/completions/toggle
type ToggleRequest struct {
	Title string `json:"title" validate:"required,max=512"`
}

// SettingsPatchRequest is the body of PATCH /api/v1/settings
type SettingsPatchRequest struct {
	Key   string          `json:"key" validate:"required,settings_key"`
	Value json.RawMessage `json:"value" validate:"required"`
}

// ProblemsQuery holds the query parameters of GET /api/v1/problems.
// Duration is not checked against the catalog: an unknown label loads sample data.
type ProblemsQuery struct {
	Company  string   `validate:"required,max=128"`
	Duration string   `validate:"required,max=64"`
	Tags     []string `validate:"max=64,dive,max=128"`
	Sort     string   `validate:"omitempty,oneof=difficulty title frequency acceptance"`
	Order    string   `validate:"omitempty,oneof=asc desc"`
}

// SelectionForm is the dashboard page form
type SelectionForm struct {
	Company  string `validate:"max=128"`
	Duration string `validate:"omitempty,duration"`
}

// validateDuration checks a duration label against the known labels
func validateDuration(fl validator.FieldLevel) bool {
	return catalog.IsDuration(fl.Field().String())
}

// validateSettingsKey checks a settings key name
func validateSettingsKey(fl validator.FieldLevel) bool {
	_, err := settings.ParseKey(fl.Field().String())
	return err == nil
}

// Struct validates s and converts validator errors into one readable message
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s exceeds maximum length %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "duration":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(durations(), ", "))
	case "settings_key":
		return fmt.Sprintf("unknown settings key %q", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func durations() []string {
	return []string{catalog.DurationThirtyDays, catalog.DurationThreeMonths, catalog.DurationSixMonths, catalog.DurationAll}
}

// SanitizeText trims whitespace and removes control characters except newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
