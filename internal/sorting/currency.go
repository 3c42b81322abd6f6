package sorting

import (
	"regexp"
	"strings"
)

var (
	// currencyRejectRegex matches any character that cannot appear in a
	// currency amount.
	currencyRejectRegex = regexp.MustCompile(`[^$£€\d.\-', ]`)

	// currencyStripRegex matches everything but digits, sign and separators.
	currencyStripRegex = regexp.MustCompile(`[^\d\-.,]`)
)

// CurrencyCodec recognizes amounts such as "$1,234.56", "1.234,56 €" or
// "12,-". A comma is required, which keeps plain integers out.
func CurrencyCodec() Codec {
	return Codec{
		Kind:   KindCurrency,
		Detect: detectCurrency,
		Pre:    currencyToOrd,
	}
}

func detectCurrency(v RawValue) bool {
	if !v.IsText() {
		return false
	}
	return strings.Contains(v.text, ",") && !currencyRejectRegex.MatchString(v.text)
}

// currencyToOrd reduces a currency amount. "-" means zero.
func currencyToOrd(v RawValue) float64 {
	s := v.String()
	if s == "-" {
		return 0
	}

	// "12,-" is a whole amount in some locales
	s = strings.Replace(s, ",-", "", 1)
	s = currencyStripRegex.ReplaceAllString(s, "")

	return parseLeadingFloat(normalizeDecimal(s))
}

// normalizeDecimal rewrites the separators of an amount so that '.' is the
// only decimal separator and grouping characters are gone.
func normalizeDecimal(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma < 0:
		return s
	case lastDot >= 0 && lastDot > lastComma:
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ",") > 1:
		// 1,234,567
		return strings.ReplaceAll(s, ",", "")
	default:
		// 12,50
		return strings.Replace(s, ",", ".", 1)
	}
}
