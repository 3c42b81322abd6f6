package sorting

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numericRegex validates a complete plain decimal literal.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// leadingFloatRegex matches the longest numeric prefix of a string, the way a
// lenient float parser reads "12.5kg" as 12.5.
var leadingFloatRegex = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// tagRegex matches markup tags and line breaks.
var tagRegex = regexp.MustCompile(`(<.*?>)|(\r?\n|\r)`)

// parseLeadingFloat parses the numeric prefix of s after leading whitespace.
// It returns NaN when s does not start with a number.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := leadingFloatRegex.FindString(s)
	if m == "" {
		return math.NaN()
	}
	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Out of range literals still carry a usable sign and magnitude.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// stripTags removes markup and line breaks and trims the result.
func stripTags(s string) string {
	return strings.TrimSpace(tagRegex.ReplaceAllString(s, ""))
}

// isBlank reports whether a value counts as empty for the generic codecs.
func isBlank(v RawValue) bool {
	if v.IsNull() {
		return true
	}
	if !v.IsText() {
		return false
	}
	s := strings.TrimSpace(v.text)
	return s == "" || s == "-"
}

// NumericCodec is the generic number fallback. Blank cells are accepted and
// sort before every number.
func NumericCodec() Codec {
	return Codec{
		Kind: KindNumeric,
		Detect: func(v RawValue) bool {
			if v.IsNumber() || isBlank(v) {
				return true
			}
			return numericRegex.MatchString(strings.TrimSpace(v.text))
		},
		Pre: func(v RawValue) float64 {
			if f, ok := v.Float(); ok {
				return f
			}
			if isBlank(v) {
				return math.Inf(-1)
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
			if err != nil {
				return math.NaN()
			}
			return f
		},
	}
}

// StringCodec is the catch-all fallback. It orders by the lower-cased text
// with markup removed.
func StringCodec() Codec {
	return Codec{
		Kind:   KindString,
		Detect: func(RawValue) bool { return true },
		Collate: func(v RawValue) string {
			return strings.ToLower(stripTags(v.String()))
		},
	}
}
