package inference_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"leakscan/internal/inference"
)

func TestTruncateContent_Short(t *testing.T) {
	out, cut := inference.TruncateContent("hello", 10)
	assert.False(t, cut)
	assert.Equal(t, "hello", out)
}

func TestTruncateContent_Long(t *testing.T) {
	out, cut := inference.TruncateContent(strings.Repeat("a", 20), 5)
	assert.True(t, cut)
	assert.True(t, strings.HasPrefix(out, "aaaaa\n\n"))
	assert.Contains(t, out, "[TRUNCATED: showing first 5 of 20 characters]")
}

func TestTruncateContent_CountsRunes(t *testing.T) {
	out, cut := inference.TruncateContent("€€€€", 2)
	assert.True(t, cut)
	assert.True(t, strings.HasPrefix(out, "€€\n\n"))
}

func TestTruncateContent_Disabled(t *testing.T) {
	out, cut := inference.TruncateContent("anything", 0)
	assert.False(t, cut)
	assert.Equal(t, "anything", out)
}
