package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/launchpad-backend/internal/entity"
)

// ExtractJSON finds the first balanced JSON object or array in a model reply.
// Code fences and surrounding prose are ignored.
func ExtractJSON(response string) (string, error) {
	objStart := strings.IndexByte(response, '{')
	arrStart := strings.IndexByte(response, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if s, ok := extractBalanced(response[objStart:], '{', '}'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}

	if arrStart >= 0 {
		if s, ok := extractBalanced(response[arrStart:], '[', ']'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}

	trimmed := strings.TrimSpace(response)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("%w: no JSON found in response", entity.ErrExtractionParse)
}

// extractBalanced expects s to start with open and returns the balanced prefix
func extractBalanced(s string, open, close byte) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into T
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	raw, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("%w: %v", entity.ErrExtractionParse, err)
	}

	return result, nil
}
