package sorting

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for date formats that cannot be expressed
// as a Go time layout.
var ErrUnsupportedFormat = errors.New("unsupported date format")

// formatToken maps one moment-style format token to its Go layout element.
type formatToken struct {
	token  string
	layout string
}

// formatTokens is ordered longest first within each letter.
var formatTokens = []formatToken{
	{"YYYY", "2006"}, {"YY", "06"},
	{"MMMM", "January"}, {"MMM", "Jan"}, {"MM", "01"}, {"M", "1"},
	{"DD", "02"}, {"D", "2"},
	{"dddd", "Monday"}, {"ddd", "Mon"},
	{"HH", "15"}, {"H", "15"},
	{"hh", "03"}, {"h", "3"},
	{"mm", "04"}, {"m", "4"},
	{"ss", "05"}, {"s", "5"},
	{"SSS", "000"}, {"SS", "00"}, {"S", "0"},
	{"A", "PM"}, {"a", "pm"},
	{"ZZ", "-0700"}, {"Z", "-07:00"},
}

// reservedLetters are format letters with a meaning this compiler does not
// support (ordinals, weeks, quarters, eras and the like).
const reservedLetters = "DdQWwEeGgkNnXxYy"

// goLayoutWords are literal sequences Go's layout language would read as a
// field.
var goLayoutWords = []string{"Jan", "Mon", "MST", "PM", "pm"}

// epochUnit marks formats that are a plain epoch number.
type epochUnit uint8

const (
	epochNone epochUnit = iota
	epochMillis
	epochSeconds
)

// dateLayout is a compiled date format.
type dateLayout struct {
	format string
	layout string
	epoch  epochUnit
}

// compileFormat translates a moment-style format such as "DD.MM.YYYY HH:mm"
// into a Go time layout. Text in square brackets is literal.
func compileFormat(format string) (dateLayout, error) {
	switch format {
	case "":
		return dateLayout{}, fmt.Errorf("%w: empty format", ErrUnsupportedFormat)
	case "x":
		return dateLayout{format: format, epoch: epochMillis}, nil
	case "X":
		return dateLayout{format: format, epoch: epochSeconds}, nil
	}

	var b strings.Builder
	rest := format

	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return dateLayout{}, fmt.Errorf("%w: unterminated literal in %q", ErrUnsupportedFormat, format)
			}
			if err := writeLiteral(&b, rest[1:end], format); err != nil {
				return dateLayout{}, err
			}
			rest = rest[end+1:]
			continue
		}

		if tok, ok := matchToken(rest); ok {
			if strings.HasPrefix(tok.token, "S") {
				out := b.String()
				if out == "" || (out[len(out)-1] != '.' && out[len(out)-1] != ',') {
					return dateLayout{}, fmt.Errorf("%w: fractional seconds must follow '.' or ',' in %q", ErrUnsupportedFormat, format)
				}
			}
			b.WriteString(tok.layout)
			rest = rest[len(tok.token):]
			continue
		}

		if strings.IndexByte(reservedLetters, rest[0]) >= 0 {
			return dateLayout{}, fmt.Errorf("%w: token %q in %q", ErrUnsupportedFormat, leadingRun(rest), format)
		}

		// Everything else up to the next token or bracket is literal.
		n := literalLen(rest)
		if err := writeLiteral(&b, rest[:n], format); err != nil {
			return dateLayout{}, err
		}
		rest = rest[n:]
	}

	return dateLayout{format: format, layout: b.String()}, nil
}

func matchToken(s string) (formatToken, bool) {
	for _, tok := range formatTokens {
		if strings.HasPrefix(s, tok.token) {
			// "Do", "DDD" and "DDDD" are not days of the month.
			if tok.token == "D" && len(s) > 1 && s[1] == 'o' {
				return formatToken{}, false
			}
			if tok.token == "DD" && len(s) > 2 && s[2] == 'D' {
				return formatToken{}, false
			}
			return tok, true
		}
	}
	return formatToken{}, false
}

func literalLen(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] == '[' || strings.IndexByte(reservedLetters, s[i]) >= 0 {
			return i
		}
		if _, ok := matchToken(s[i:]); ok {
			return i
		}
	}
	return len(s)
}

func leadingRun(s string) string {
	i := 1
	for i < len(s) && s[i] == s[0] {
		i++
	}
	if i < len(s) && s[i] == 'o' {
		i++
	}
	return s[:i]
}

// writeLiteral appends literal text, rejecting text that Go would parse as a
// layout element.
func writeLiteral(b *strings.Builder, lit, format string) error {
	if strings.ContainsAny(lit, "0123456789_") {
		return fmt.Errorf("%w: literal %q in %q", ErrUnsupportedFormat, lit, format)
	}
	for _, w := range goLayoutWords {
		if strings.Contains(lit, w) {
			return fmt.Errorf("%w: literal %q in %q", ErrUnsupportedFormat, lit, format)
		}
	}
	b.WriteString(lit)
	return nil
}
