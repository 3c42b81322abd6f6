package sorting

import (
	"math"
	"strings"
)

// CompareFunc orders two keys and returns -1, 0 or 1.
type CompareFunc func(a, b float64) int

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps "desc" (any case) to Desc and everything else to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Ascending orders keys from low to high. NaN sorts after every number.
func Ascending(a, b float64) int {
	if c, ok := compareNaN(a, b); ok {
		return c
	}
	return compareFloat(a, b)
}

// Descending orders keys from high to low. NaN still sorts last.
func Descending(a, b float64) int {
	if c, ok := compareNaN(a, b); ok {
		return c
	}
	return compareFloat(b, a)
}

// compareNaN settles comparisons that involve NaN, which must not depend on
// the direction.
func compareNaN(a, b float64) (int, bool) {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0, true
	case an:
		return 1, true
	case bn:
		return -1, true
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
