package keybinds

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Type:    "conflict",
		Context: ContextLog,
		Key:     "q",
		Message: "key bound 2 times",
	}
	want := "[conflict] q in context 'log': key bound 2 times"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidateRegistry_Defaults(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())
	if result.HasErrors() {
		t.Errorf("Defaults should validate, got:\n%s", result.String())
	}
	// The filter prompt takes tab on purpose
	if !result.HasWarnings() {
		t.Error("Expected shadowing warning for filter tab")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{"unknown action", &Config{Global: map[string]string{"explode": "x"}}, "unknown action"},
		{"empty key", &Config{Log: map[string]string{"scroll_up": "k,"}}, "key cannot be empty"},
		{"bare modifier", &Config{Global: map[string]string{"send": "ctrl+"}}, "modifier without key"},
		{"reserved", &Config{Draft: map[string]string{"clear_log": "ctrl+c"}}, "reserved key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator().ValidateConfig(tt.config)
			if !result.HasErrors() {
				t.Fatalf("Expected errors")
			}
			if !strings.Contains(result.String(), tt.want) {
				t.Errorf("Expected %q in:\n%s", tt.want, result.String())
			}
		})
	}
}

func TestValidationResult_String_NoIssues(t *testing.T) {
	r := &ValidationResult{}
	if got := r.String(); got != "No issues found" {
		t.Errorf("got %q", got)
	}
}
