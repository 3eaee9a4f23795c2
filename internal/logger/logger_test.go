package logger

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		format      string
		expectError bool
	}{
		{name: "default is json", format: ""},
		{name: "json", format: "json"},
		{name: "console", format: "console"},
		{name: "case insensitive", format: " Console "},
		{name: "unknown", format: "xml", expectError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, err := New(tt.format, false)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for format %q", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.format, err)
			}
			if log == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestNewProductionLogger_DebugLevel(t *testing.T) {
	t.Parallel()

	debug, err := NewProductionLogger(true)
	if err != nil {
		t.Fatalf("NewProductionLogger(true) error = %v", err)
	}
	if ce := debug.Check(zapcore.DebugLevel, "probe"); ce == nil {
		t.Error("expected debug level to be enabled in debug mode")
	}

	info, err := NewProductionLogger(false)
	if err != nil {
		t.Fatalf("NewProductionLogger(false) error = %v", err)
	}
	if ce := info.Check(zapcore.DebugLevel, "probe"); ce != nil {
		t.Error("expected debug level to be disabled outside debug mode")
	}
}

func TestSync_NilLogger(t *testing.T) {
	t.Parallel()

	if err := Sync(nil); err != nil {
		t.Errorf("Sync(nil) = %v, want nil", err)
	}
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "empty", input: "", maxLength: 10, want: ""},
		{name: "plain", input: "Google", maxLength: 10, want: "Google"},
		{name: "control characters removed", input: "Two\x00 Sum\x1b", maxLength: 20, want: "Two Sum"},
		{name: "truncated", input: "abcdefghij", maxLength: 4, want: "abcd..."},
		{name: "invalid utf8 dropped", input: "a\xffb", maxLength: 10, want: "ab"},
		{name: "zero max uses default", input: "x", maxLength: 0, want: "x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizeName_Truncates(t *testing.T) {
	t.Parallel()

	got := SanitizeName(strings.Repeat("a", MaxNameLength+10))
	if len(got) != MaxNameLength+len("...") {
		t.Errorf("len(SanitizeName) = %d, want %d", len(got), MaxNameLength+3)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q, want empty", got)
	}
	if got := SanitizeError(errors.New("boom\n\x07")); got != "boom\n" {
		t.Errorf("SanitizeError = %q, want %q", got, "boom\n")
	}
}
