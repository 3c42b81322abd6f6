package sorting

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// Prefixes maps SI unit prefixes, short and spelled out, to their scale.
// Lookups are case-sensitive: "m" is milli while "M" is mega. "k" and "K"
// both mean kilo.
var Prefixes = map[string]float64{
	"y": 1e-24, "yocto": 1e-24,
	"z": 1e-21, "zepto": 1e-21,
	"a": 1e-18, "atto": 1e-18,
	"f": 1e-15, "femto": 1e-15,
	"p": 1e-12, "pico": 1e-12,
	"n": 1e-9, "nano": 1e-9,
	"µ": 1e-6, "micro": 1e-6,
	"m": 1e-3, "milli": 1e-3,
	"c": 1e-2, "centi": 1e-2,
	"d": 1e-1, "deci": 1e-1,
	"da": 1e1, "deka": 1e1,
	"h": 1e2, "hecto": 1e2,
	"k": 1e3, "K": 1e3, "kilo": 1e3,
	"M": 1e6, "mega": 1e6,
	"G": 1e9, "giga": 1e9,
	"T": 1e12, "tera": 1e12,
	"P": 1e15, "peta": 1e15,
	"E": 1e18, "exa": 1e18,
	"Z": 1e21, "zetta": 1e21,
	"Y": 1e24, "yotta": 1e24,
}

var (
	metricNumberRegex = regexp.MustCompile(`[+-]?\d+(\.\d+)?`)
	metricPrefixRegex = buildPrefixRegex(Prefixes)
)

// buildPrefixRegex matches a prefix that follows a digit or starts a word
// and is itself followed by a unit, e.g. the "G" of "4.9GB". Word starts are
// found by hand since \b only knows ASCII and would miss "µ". Longer tokens
// come first so "mega" is not read as "m" + "ega".
func buildPrefixRegex(table map[string]float64) *regexp.Regexp {
	tokens := make([]string, 0, len(table))
	for tok := range table {
		tokens = append(tokens, tok)
	}
	slices.SortFunc(tokens, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for i, tok := range tokens {
		tokens[i] = regexp.QuoteMeta(tok)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}_]|\d)(` + strings.Join(tokens, "|") + `)\w+\b`)
}

// MetricCodec recognizes numbers with a prefixed unit, such as "1 KB",
// "4.9GB" or "3cm". A bare number is not metric.
func MetricCodec() Codec {
	return Codec{
		Kind: KindMetric,
		Detect: func(v RawValue) bool {
			return !isNaN(metricToOrd(v))
		},
		Pre: metricToOrd,
	}
}

// metricToOrd scales the first number of the value by its unit prefix.
func metricToOrd(v RawValue) float64 {
	s := v.String()

	num := metricNumberRegex.FindString(s)
	if num == "" {
		return nan
	}
	f := parseLeadingFloat(num)
	if isNaN(f) {
		return nan
	}

	m := metricPrefixRegex.FindStringSubmatch(s)
	if m == nil {
		return nan
	}
	scale, ok := Prefixes[m[1]]
	if !ok {
		return nan
	}
	return f * scale
}

func isNaN(f float64) bool { return f != f }
