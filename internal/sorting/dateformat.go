package sorting

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// ErrUnknownLocale is returned for locale ids without month and day names.
var ErrUnknownLocale = errors.New("unknown locale")

// Last is the key of values a parametric date codec cannot parse. It sorts
// after every real date in ascending order.
var Last = math.Inf(1)

// DateFormatCodec builds the codec for one date format, such as
// "DD.MM.YYYY HH:mm", read in loc. The locale supplies month and day names
// and may be empty for English.
//
// Null and blank cells are always accepted so a column that mixes dates with
// empty cells still sorts as a date column; they reduce to Last.
func DateFormatCodec(format, locale string, loc *time.Location) (Codec, error) {
	layout, err := compileFormat(format)
	if err != nil {
		return Codec{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	parse := func(s string) (time.Time, error) {
		return time.ParseInLocation(layout.layout, s, loc)
	}
	if locale != "" {
		ml, err := resolveLocale(locale)
		if err != nil {
			return Codec{}, err
		}
		parse = func(s string) (time.Time, error) {
			return monday.ParseInLocation(layout.layout, s, loc, ml)
		}
	}

	toOrd := func(v RawValue) (float64, bool) {
		if v.IsNull() {
			return Last, false
		}
		s := stripTags(v.String())
		if s == "" {
			return Last, false
		}
		if layout.epoch != epochNone {
			return parseEpoch(s, layout.epoch)
		}
		t, err := parse(s)
		if err != nil {
			return Last, false
		}
		return float64(t.UnixMilli()), true
	}

	return Codec{
		Kind: DateFormatKind(format),
		Detect: func(v RawValue) bool {
			if v.IsNull() || stripTags(v.String()) == "" {
				return true
			}
			_, ok := toOrd(v)
			return ok
		},
		Pre: func(v RawValue) float64 {
			key, _ := toOrd(v)
			return key
		},
	}, nil
}

// RegisterDateFormat registers a codec for a date format at the front of
// the priority order and returns its kind. Registering a format again
// replaces the earlier codec.
func (r *Registry) RegisterDateFormat(format, locale string) (Kind, error) {
	c, err := DateFormatCodec(format, locale, r.Location())
	if err != nil {
		return "", fmt.Errorf("register date format %q: %w", format, err)
	}
	r.Register(c)
	return c.Kind, nil
}

func parseEpoch(s string, unit epochUnit) (float64, bool) {
	switch unit {
	case epochMillis:
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Last, false
		}
		return float64(ms), true
	default:
		sec, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(sec) || math.IsInf(sec, 0) {
			return Last, false
		}
		return math.Trunc(sec * 1000), true
	}
}

// resolveLocale maps a BCP 47 or ll_RR locale id to a supported locale.
// A bare language picks its most likely region; when that region is not
// supported, the first supported locale of the same language is used.
func resolveLocale(id string) (monday.Locale, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(id), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, id)
	}
	base, _ := tag.Base()
	region, _ := tag.Region()

	supported := monday.ListLocales()
	slices.Sort(supported)

	want := monday.Locale(base.String() + "_" + region.String())
	if slices.Contains(supported, want) {
		return want, nil
	}
	for _, l := range supported {
		if strings.HasPrefix(string(l), base.String()+"_") {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocale, id)
}
