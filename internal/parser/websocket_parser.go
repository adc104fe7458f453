package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/studiowebux/sttplay/internal/types"
	"gopkg.in/yaml.v3"
)

// ParseScriptFile parses a script by extension: .ws, or .yaml/.yml/.json
func ParseScriptFile(filePath string) (*types.Script, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ws":
		return ParseWebSocketFile(filePath)
	case ".yaml", ".yml", ".json":
		return ParseYAMLScript(filePath)
	default:
		return nil, fmt.Errorf("unsupported script file %q (expected .ws, .yaml, .yml or .json)", filePath)
	}
}

// ParseYAMLScript parses a YAML (or JSON) script file
func ParseYAMLScript(filePath string) (*types.Script, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var script types.Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if script.URL == "" {
		return nil, fmt.Errorf("script %s has no url", filePath)
	}
	return &script, nil
}

// ParseWebSocketFile parses a .ws file with the endpoint and one step per ### block
func ParseWebSocketFile(filePath string) (*types.Script, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	script := &types.Script{
		Headers: make(map[string]string),
		Steps:   []types.ScriptStep{},
	}

	var current *types.ScriptStep
	var body []string
	inBody := false

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimRight(strings.Join(body, "\n"), "\n ")
		if current.Template != "" && current.Direction == "" {
			current.Direction = "send"
		}
		if current.Direction != "" {
			script.Steps = append(script.Steps, *current)
		}
		current = nil
		body = nil
		inBody = false
	}

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			if inBody {
				body = append(body, line)
			}
			continue
		}

		// Connection line: WEBSOCKET url
		if strings.HasPrefix(strings.ToUpper(line), "WEBSOCKET ") {
			script.URL = strings.TrimSpace(line[len("WEBSOCKET "):])
			continue
		}

		// Step separator
		if strings.HasPrefix(line, "###") {
			flush()
			current = &types.ScriptStep{
				Name: strings.TrimSpace(strings.TrimPrefix(line, "###")),
			}
			continue
		}

		// Annotations
		if strings.HasPrefix(line, "#") && !inBody {
			annotation := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if current == nil {
				parseConnectionAnnotation(script, annotation)
				continue
			}
			if err := parseStepAnnotation(current, annotation); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			continue
		}

		// Header: Key: Value (only before the first step)
		if current == nil {
			if key, value, ok := strings.Cut(line, ":"); ok {
				script.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
				continue
			}
			return nil, fmt.Errorf("line %d: unexpected content before first ### step", lineNum)
		}

		// Send: "> text" inline, or "> json" / "> text" / ">" followed by a body
		if strings.HasPrefix(trimmed, ">") && !inBody {
			current.Direction = "send"
			rest := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
			switch rest {
			case "json", "text", "binary":
				current.Type = rest
			case "":
			default:
				body = append(body, rest)
			}
			inBody = true
			continue
		}

		// Receive: "<" waits for the next frame
		if strings.HasPrefix(trimmed, "<") && !inBody {
			current.Direction = "receive"
			continue
		}

		if inBody {
			body = append(body, line)
			continue
		}

		return nil, fmt.Errorf("line %d: expected '>' or '<' in step %q", lineNum, current.Name)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	flush()

	if script.URL == "" {
		return nil, fmt.Errorf("missing WEBSOCKET line in %s", filePath)
	}

	return script, nil
}

func parseConnectionAnnotation(script *types.Script, annotation string) {
	switch {
	case strings.HasPrefix(annotation, "@subprotocol "):
		script.Subprotocols = append(script.Subprotocols, strings.TrimSpace(strings.TrimPrefix(annotation, "@subprotocol")))

	case strings.HasPrefix(annotation, "@tls."):
		if script.TLS == nil {
			script.TLS = &types.TLSConfig{}
		}
		name, value, _ := strings.Cut(strings.TrimPrefix(annotation, "@tls."), " ")
		value = strings.TrimSpace(value)
		switch name {
		case "certFile":
			script.TLS.CertFile = value
		case "keyFile":
			script.TLS.KeyFile = value
		case "caFile":
			script.TLS.CAFile = value
		case "insecureSkipVerify":
			script.TLS.InsecureSkipVerify = value == "true"
		}
	}
	// Anything else is a plain comment
}

func parseStepAnnotation(step *types.ScriptStep, annotation string) error {
	name, value, _ := strings.Cut(annotation, " ")
	value = strings.TrimSpace(value)

	switch name {
	case "@type":
		step.Type = value
	case "@template":
		step.Template = value
	case "@direction":
		if value != "send" && value != "receive" {
			return fmt.Errorf("invalid @direction %q", value)
		}
		step.Direction = value
	case "@timeout":
		timeout, err := strconv.Atoi(value)
		if err != nil || timeout < 0 {
			return fmt.Errorf("invalid @timeout %q", value)
		}
		step.Timeout = timeout
	}
	return nil
}
