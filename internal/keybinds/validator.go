package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator validates keybinding configurations
type Validator struct {
	// reservedKeys must keep their global action
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuit,
		},
	}
}

// ValidateRegistry validates an entire registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	v.checkReservedKeys(registry, result)
	v.checkShadowing(registry, result)

	return result
}

// ValidateConfig validates a configuration before applying it
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	for context, bindings := range config.sections() {
		for actionStr, keys := range bindings {
			if err := ValidateAction(actionStr); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "invalid",
					Context: context,
					Key:     keys,
					Message: err.Error(),
				})
				continue
			}
			if _, err := splitKeys(keys); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "invalid",
					Context: context,
					Key:     keys,
					Message: err.Error(),
				})
			}
		}
	}
	if result.HasErrors() {
		return result
	}

	registry := NewDefaultRegistry()
	if err := ApplyConfig(registry, config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Message: err.Error(),
		})
		return result
	}

	merged := v.ValidateRegistry(registry)
	result.Errors = append(result.Errors, merged.Errors...)
	result.Warnings = append(result.Warnings, merged.Warnings...)
	return result
}

// checkReservedKeys reports reserved keys bound to another action anywhere
func (v *Validator) checkReservedKeys(registry *Registry, result *ValidationResult) {
	for context, bindings := range registry.bindings {
		for key, action := range bindings {
			want, reserved := v.reservedKeys[key]
			if reserved && action != want {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "conflict",
					Context: context,
					Key:     key,
					Message: fmt.Sprintf("reserved key must stay bound to %s", want),
				})
			}
		}
	}

	global := registry.bindings[ContextGlobal]
	for key, want := range v.reservedKeys {
		if global[key] != want {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "conflict",
				Context: ContextGlobal,
				Key:     key,
				Message: fmt.Sprintf("reserved key must stay bound to %s", want),
			})
		}
	}
}

// checkShadowing checks for context-specific bindings that shadow global bindings
func (v *Validator) checkShadowing(registry *Registry, result *ValidationResult) {
	globalBindings := registry.bindings[ContextGlobal]
	if globalBindings == nil {
		return
	}

	var contexts []string
	for context := range registry.bindings {
		contexts = append(contexts, string(context))
	}
	sort.Strings(contexts)

	for _, name := range contexts {
		context := Context(name)
		if context == ContextGlobal {
			continue
		}
		for _, binding := range registry.ListBindings(context) {
			globalAction, hasGlobal := globalBindings[binding.Key]
			if hasGlobal && binding.Action != globalAction {
				result.Warnings = append(result.Warnings, ValidationError{
					Type:    "warning",
					Context: context,
					Key:     binding.Key,
					Message: fmt.Sprintf("shadows global binding (%s -> %s)", globalAction, binding.Action),
				})
			}
		}
	}
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if strings.ContainsAny(key, " \t") {
		return fmt.Errorf("key %q contains whitespace", key)
	}

	validModifiers := []string{"ctrl+", "alt+", "shift+"}
	for _, mod := range validModifiers {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}

	return nil
}

// ValidateAction checks if an action string is valid
func ValidateAction(actionStr string) error {
	if actionStr == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !Action(actionStr).IsKnown() {
		return fmt.Errorf("unknown action %q", actionStr)
	}
	return nil
}
