package sorting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the codec that claimed a value.
// The zero Kind means no codec matched.
type Kind string

const (
	KindCurrency        Kind = "currency"
	KindFormattedNumber Kind = "formatted-number"
	KindMetric          Kind = "metric"
	KindFoswikiDate     Kind = "date-foswiki"
	KindNumeric         Kind = "num"
	KindString          Kind = "string"
)

// momentPrefix is the kind prefix for codecs built by RegisterDateFormat.
const momentPrefix = "moment-"

// DateFormatKind returns the kind name used for a parametric date format.
func DateFormatKind(format string) Kind {
	return Kind(momentPrefix + format)
}

// valueType discriminates RawValue.
type valueType uint8

const (
	typeText valueType = iota
	typeNumber
	typeNull
)

// RawValue is a cell value as found in the table: text, a number, or null.
// It is immutable; codecs only read it.
type RawValue struct {
	typ  valueType
	text string
	num  float64
}

// Text wraps a string cell.
func Text(s string) RawValue { return RawValue{typ: typeText, text: s} }

// Number wraps a numeric cell, such as a pre-parsed epoch.
func Number(f float64) RawValue { return RawValue{typ: typeNumber, num: f} }

// Null returns the null cell.
func Null() RawValue { return RawValue{typ: typeNull} }

// Texts wraps every string of a row.
func Texts(ss ...string) []RawValue {
	out := make([]RawValue, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}

func (v RawValue) IsText() bool   { return v.typ == typeText }
func (v RawValue) IsNumber() bool { return v.typ == typeNumber }
func (v RawValue) IsNull() bool   { return v.typ == typeNull }

// Float returns the number of a numeric value.
func (v RawValue) Float() (float64, bool) {
	if v.typ != typeNumber {
		return 0, false
	}
	return v.num, true
}

// String returns the value as display text. Numbers use the shortest
// representation and null is the empty string.
func (v RawValue) String() string {
	switch v.typ {
	case typeNumber:
		return formatNumber(v.num)
	case typeNull:
		return ""
	default:
		return v.text
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// UnmarshalJSON accepts a JSON string, number or null.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("cell must be a string, number or null: %w", err)
	}
	*v = Number(f)
	return nil
}

// MarshalJSON writes the value back in its original JSON type.
func (v RawValue) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case typeNull:
		return []byte("null"), nil
	case typeNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return json.Marshal(formatNumber(v.num))
		}
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.text)
	}
}
