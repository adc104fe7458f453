package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// ConfigFileName is looked up in the sttplay config directory
const ConfigFileName = "keybinds.jsonc"

// Config represents the user's keybinding overrides.
// Each section maps an action to a comma separated list of keys.
type Config struct {
	Global   map[string]string `json:"global,omitempty"`
	KeyInput map[string]string `json:"key_input,omitempty"`
	Draft    map[string]string `json:"draft,omitempty"`
	Log      map[string]string `json:"log,omitempty"`
	Filter   map[string]string `json:"filter,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:   c.Global,
		ContextKeyInput: c.KeyInput,
		ContextDraft:    c.Draft,
		ContextLog:      c.Log,
		ContextFilter:   c.Filter,
	}
}

// LoadConfig loads keybinding configuration from a JSONC file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration as indented JSON
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteDefaultConfig writes the default bindings to path unless a file exists
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check %s: %w", filepath.Base(path), err)
	}
	if err := SaveConfig(ExportConfig(NewDefaultRegistry()), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ApplyConfig applies user configuration to a registry.
// A configured action replaces every default key of that action in the context.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, bindings := range config.sections() {
		for actionStr, keys := range bindings {
			action := Action(actionStr)
			if !action.IsKnown() {
				return fmt.Errorf("unknown action %q in %s bindings", actionStr, context)
			}

			parsed, err := splitKeys(keys)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", context, actionStr, err)
			}

			registry.Unbind(context, action)
			registry.RegisterMultiple(context, parsed, action)
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ConfigFileName, err)
	}

	if result := NewValidator().ValidateConfig(config); result.HasErrors() {
		return nil, fmt.Errorf("invalid keybindings:\n%s", result.String())
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	return registry, nil
}

// ExportConfig converts a registry back to the file format
func ExportConfig(registry *Registry) *Config {
	config := &Config{}
	targets := map[Context]*map[string]string{
		ContextGlobal:   &config.Global,
		ContextKeyInput: &config.KeyInput,
		ContextDraft:    &config.Draft,
		ContextLog:      &config.Log,
		ContextFilter:   &config.Filter,
	}

	for context, target := range targets {
		for _, binding := range registry.ListBindings(context) {
			if *target == nil {
				*target = make(map[string]string)
			}
			action := string(binding.Action)
			if existing, ok := (*target)[action]; ok {
				(*target)[action] = existing + "," + binding.Key
			} else {
				(*target)[action] = binding.Key
			}
		}
	}

	return config
}

func splitKeys(keys string) ([]string, error) {
	var out []string
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if err := ValidateKey(key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}
