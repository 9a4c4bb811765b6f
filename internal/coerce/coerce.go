// Package coerce converts loosely typed model JSON (decoded into
// map[string]any) into strict Go values. Absent or unparseable numbers
// become nil, never zero.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var numberReplacer = strings.NewReplacer(
	",", "",
	" ", "",
	"$", "",
	"€", "",
	"£", "",
	"₹", "",
	"¥", "",
	"%", "",
	"USD", "",
	"usd", "",
)

// Float parses JSON numbers and numeric strings such as "$1,234.50" or
// "(12.00)". It returns nil for anything else.
func Float(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		return parseNumber(t)
	}
	return nil
}

// FloatOr returns Float(v) or def when v is not numeric.
func FloatOr(v interface{}, def float64) float64 {
	if f := Float(v); f != nil {
		return *f
	}
	return def
}

func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = numberReplacer.Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if negative {
		f = -f
	}
	return &f
}

// Confidence parses a score and clamps it to [0,1]. Scores expressed as
// percentages (greater than 1 and at most 100) are scaled down.
func Confidence(v interface{}) *float64 {
	f := Float(v)
	if f == nil {
		return nil
	}
	c := *f
	if c > 1 && c <= 100 {
		c /= 100
	}
	c = Clamp(c)
	return &c
}

// Clamp bounds f to [0,1].
func Clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// Text renders scalars as strings; nil and containers become "".
func Text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// OptionalText returns nil for empty text.
func OptionalText(v interface{}) *string {
	s := Text(v)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// Enum lowercases and snake-cases a label for enum matching.
func Enum(v interface{}) string {
	s := strings.ToLower(Text(v))
	s = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(s)
	return s
}

// Bool accepts JSON booleans and "true"/"yes" strings.
func Bool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}

// Map returns v as an object, or nil.
func Map(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// Slice returns v as an array, or nil.
func Slice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// Strings collects the non-empty scalar entries of an array. A bare string
// is treated as a one-element list. The result is never nil.
func Strings(v interface{}) []string {
	out := []string{}
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range Slice(v) {
		if s := Text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Floats collects the numeric entries of an array. The result is never nil.
func Floats(v interface{}) []float64 {
	out := []float64{}
	for _, item := range Slice(v) {
		if f := Float(item); f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// First returns the first present key of m.
func First(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
