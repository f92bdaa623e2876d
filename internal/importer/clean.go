package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CleanNumber coerces a messy cell value to a float64. Numeric types pass
// through unchanged; strings are stripped to digits and dots, then parsed as
// the longest numeric prefix, so "15.50 SR" and "1,200" both survive.
// Anything unparsable, including nil and empty strings, becomes 0.
func CleanNumber(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return parseNumericPrefix(stripNonNumeric(v.String()))
	case string:
		return parseNumericPrefix(stripNonNumeric(v))
	case bool:
		return 0
	default:
		return parseNumericPrefix(stripNonNumeric(fmt.Sprint(v)))
	}
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseNumericPrefix parses the longest leading run that forms a valid
// number, so "12.5.3" yields 12.5 rather than an error.
func parseNumericPrefix(s string) float64 {
	end := 0
	seenDot := false
	seenDigit := false
	for i, r := range s {
		if r == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else {
			seenDigit = true
		}
		end = i + 1
	}
	if !seenDigit {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}
