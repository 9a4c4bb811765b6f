package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ErrNoJSON is wrapped by ParseError when no tier produced valid JSON.
var ErrNoJSON = errors.New("no JSON object found in model output")

// ErrTopLevelArray is wrapped by ParseError when the answer is a JSON array
// where an object was expected.
var ErrTopLevelArray = errors.New("model output is a JSON array, not an object")

// ParseError describes a model answer that could not be decoded.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing model JSON output: %v (raw: %s)", e.Err, truncate(e.Raw, 500))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseModelJSON decodes a model answer into T. It tries, in order, the whole
// answer, the first fenced code block, and the outermost balanced JSON object.
// An array answer that T cannot hold is rejected rather than mined for its
// first element.
func ParseModelJSON[T any](raw string) (T, error) {
	var out T
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return out, &ParseError{Raw: raw, Err: ErrNoJSON}
	}

	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, nil
	}

	body := trimmed
	if m := fencedBlockRe.FindStringSubmatch(trimmed); len(m) > 1 {
		body = strings.TrimSpace(m[1])
		var fenced T
		if err := json.Unmarshal([]byte(body), &fenced); err == nil {
			return fenced, nil
		}
	}

	// Picking an object out of an array would silently drop its siblings.
	if strings.HasPrefix(body, "[") {
		return out, &ParseError{Raw: raw, Err: ErrTopLevelArray}
	}

	if obj, ok := outermostObject(trimmed); ok {
		var embedded T
		err := json.Unmarshal([]byte(obj), &embedded)
		if err == nil {
			return embedded, nil
		}
		return out, &ParseError{Raw: raw, Err: fmt.Errorf("%w: %v", ErrNoJSON, err)}
	}

	return out, &ParseError{Raw: raw, Err: ErrNoJSON}
}

// outermostObject returns the first balanced {...} span, honoring string
// literals and escapes.
func outermostObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
