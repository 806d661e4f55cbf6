// Package parse contains small helpers for digging structured data out of
// free-form model output. Models wrap answers in markdown code fences often
// enough that every consumer needs the same cleanup.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^\\s*```[a-zA-Z]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
	fencedBlock   = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// StripFences removes a single layer of leading/trailing triple-backtick
// fences (optionally tagged, e.g. ```html) and trims whitespace.
func StripFences(raw string) string {
	cleaned := leadingFence.ReplaceAllString(raw, "")
	cleaned = trailingFence.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ExtractJSON unmarshals the single JSON object a model response is expected
// to contain into v. It first looks for a fenced code block; failing that, it
// treats the entire trimmed response as the payload.
func ExtractJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("empty response")
	}

	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		candidate := strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(StripFences(trimmed)), v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}
