// Package filter applies jq expressions to command output.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// NormalizeExpression fixes shell-escaped operators in jq expressions.
// Zsh escapes ! to \! even in single quotes, breaking operators like !=.
func NormalizeExpression(expr string) string {
	return strings.TrimSpace(strings.ReplaceAll(expr, `\!`, `!`))
}

// Compile parses and compiles expression so a bad --query fails before any
// request is sent.
func Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(NormalizeExpression(expression))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return code, nil
}

// Apply applies a jq filter expression to the input data. A single result is
// returned as is; several results are collected into a slice.
func Apply(data any, expression string) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return data, nil
	}
	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	results, err := run(code, data)
	if err != nil {
		if items, ok := itemsFallback(data, expression); ok {
			if fallback, fallbackErr := run(code, items); fallbackErr == nil {
				results, err = fallback, nil
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

func run(code *gojq.Code, data any) ([]any, error) {
	iter := code.Run(data)

	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

// itemsFallback lets ".[]" queries run against list output, which is wrapped
// as {"items": [...]}.
func itemsFallback(data any, expression string) (any, bool) {
	expr := strings.TrimSpace(expression)
	if !strings.HasPrefix(expr, ".[]") && !strings.HasPrefix(expr, "[.[]") {
		return nil, false
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	items, ok := m["items"].([]any)
	return items, ok
}

// ApplyFromJSON applies a jq filter to JSON bytes and returns the result as a
// Go value for the caller to format.
func ApplyFromJSON(jsonData []byte, expression string) (any, error) {
	var data any
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Apply(data, expression)
}
