package inference

import "fmt"

// TruncateContent cuts s to at most max runes and appends a visible marker.
// The second return value reports whether anything was cut.
func TruncateContent(s string, max int) (string, bool) {
	if max <= 0 {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s, false
	}
	return string(runes[:max]) + "\n\n" + TruncationMarker(max, len(runes)), true
}

// TruncationMarker is the note appended to truncated model input.
func TruncationMarker(shown, total int) string {
	return fmt.Sprintf("[TRUNCATED: showing first %d of %d characters]", shown, total)
}
