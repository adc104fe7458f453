package filter

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// Query is a compiled JMESPath expression applied to received payloads
type Query struct {
	expression string
	jp         *jmespath.JMESPath
}

// Compile validates a JMESPath expression
func Compile(expression string) (*Query, error) {
	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}
	return &Query{expression: expression, jp: jp}, nil
}

// String returns the source expression
func (q *Query) String() string {
	return q.expression
}

// Apply evaluates the query against a JSON payload and returns indented JSON.
// A null result is returned as "null".
func (q *Query) Apply(payload string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := q.jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}

// Apply compiles expression and evaluates it against payload
func Apply(payload string, expression string) (string, error) {
	q, err := Compile(expression)
	if err != nil {
		return "", err
	}
	return q.Apply(payload)
}
