package sorting

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// monthRegex requires a month name or abbreviation as a whole word, so that
// a plain "12" is never taken for a date.
var monthRegex = regexp.MustCompile(`(?i)\b(Jan(uary)?|Feb(ruary)?|Mar(ch)?|Apr(il)?|May|June?|July?|Aug(ust)?|Sep(t(ember)?)?|Oct(ober)?|Nov(ember)?|Dec(ember)?)\b`)

// foswikiLayouts are the date layouts wiki tables render, tried in order
// before the general parser.
var foswikiLayouts = []string{
	"2 Jan 2006 15:04",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	"2 Jan 06",
	"2 Jan 2006 15:04 MST",
	"Jan 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006 15:04",
	"Jan 2, 2006 15:04",
	"2006 Jan 2",
	"2 January 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2006",
	"2006 Jan",
	"January 2006",
	"2006 January",
}

// FoswikiDateCodec recognizes wiki dates such as "02 Feb 1978" or
// "17 May 2013 - 17:07" and orders them by epoch milliseconds in loc.
//
// A blank cell reduces to 0 and is accepted, so a date column may contain
// empty cells.
func FoswikiDateCodec(loc *time.Location) Codec {
	if loc == nil {
		loc = time.UTC
	}
	pre := func(v RawValue) float64 {
		return foswikiDateToOrd(v, loc)
	}
	return Codec{
		Kind: KindFoswikiDate,
		Detect: func(v RawValue) bool {
			return v.IsText() && !isNaN(pre(v))
		},
		Pre: pre,
	}
}

// cleanFoswikiDate drops the first &nbsp; and the first '-', which separates
// the date from the time of day, and trims the result.
func cleanFoswikiDate(s string) string {
	s = strings.Replace(s, "&nbsp;", "", 1)
	s = strings.Replace(s, "-", "", 1)
	return strings.TrimSpace(s)
}

func foswikiDateToOrd(v RawValue, loc *time.Location) float64 {
	if f, ok := v.Float(); ok {
		return f
	}

	s := cleanFoswikiDate(v.String())
	if s == "" {
		return 0
	}
	if !monthRegex.MatchString(s) {
		return nan
	}

	t, ok := parseFoswikiDate(s, loc)
	if !ok {
		return nan
	}
	return float64(t.UnixMilli())
}

func parseFoswikiDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range foswikiLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	// The general parser leaves the year at zero when the cell has none.
	t, err := dateparse.ParseIn(s, loc)
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}
