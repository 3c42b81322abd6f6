package sorting

import "regexp"

// formattedNumberRegex matches a number wrapped in a single markup element
// anywhere in the cell, e.g. `<span class="badge">42</span> items`.
var formattedNumberRegex = regexp.MustCompile(`^.*?<\w+.*?>\s*([+-]?\d+(\.\d+)?)?\s*</\w+>.*$`)

// FormattedNumberCodec lets a cell decorate a number with markup and still
// sort by the number itself.
func FormattedNumberCodec() Codec {
	return Codec{
		Kind: KindFormattedNumber,
		Detect: func(v RawValue) bool {
			return v.IsText() && formattedNumberRegex.MatchString(v.text)
		},
		Pre: formattedNumberToOrd,
	}
}

// formattedNumberToOrd returns the wrapped number, or 0 when the element is
// empty.
func formattedNumberToOrd(v RawValue) float64 {
	s := v.String()
	m := formattedNumberRegex.FindStringSubmatch(s)
	if m == nil {
		return parseLeadingFloat(s)
	}
	if m[1] == "" {
		return 0
	}
	return parseLeadingFloat(m[1])
}
