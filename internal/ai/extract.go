package ai

import (
	"encoding/json"
	"strings"

	"resumeforge/internal/errors"
)

// ExtractJSON slices the span between the first '{' and the last '}' of a
// model reply and decodes it into T. This tolerates models that wrap JSON in
// prose or code fences. A stray brace inside a string value can still fool
// the slice; that fragility is accepted rather than parsing the reply
// properly.
func ExtractJSON[T any](raw string) (T, error) {
	var out T

	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return out, errors.NewAIError(errors.ErrCodeMalformedModelOutput,
			"Model response did not contain JSON", nil)
	}

	candidate := trimmed[start : end+1]
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return out, errors.NewAIError(errors.ErrCodeMalformedModelOutput,
			"Unable to decode model JSON", err)
	}
	return out, nil
}
