package sorting

// DetectFunc reports whether a value belongs to a codec's kind.
// It never panics and has no side effects.
type DetectFunc func(RawValue) bool

// PreFunc reduces an accepted value to its order key.
type PreFunc func(RawValue) float64

// CollateFunc reduces a value to a text key for text ordered kinds.
type CollateFunc func(RawValue) string

// Codec pairs the detection and reduction of one value kind.
//
// A codec orders either numerically through Pre, or textually through
// Collate. Asc and Desc default to Ascending and Descending when nil.
type Codec struct {
	Kind    Kind
	Detect  DetectFunc
	Pre     PreFunc
	Collate CollateFunc
	Asc     CompareFunc
	Desc    CompareFunc
}

// withDefaults fills in the default comparators.
func (c Codec) withDefaults() Codec {
	if c.Asc == nil {
		c.Asc = Ascending
	}
	if c.Desc == nil {
		c.Desc = Descending
	}
	return c
}

// Compare returns the comparator for a direction.
func (c Codec) Compare(dir Direction) CompareFunc {
	c = c.withDefaults()
	if dir == Desc {
		return c.Desc
	}
	return c.Asc
}

// Key reduces v with the codec. Text ordered codecs have no numeric key and
// return NaN.
func (c Codec) Key(v RawValue) float64 {
	if c.Pre == nil {
		return nan
	}
	return c.Pre(v)
}

// Classification is the outcome of classifying a single value.
type Classification struct {
	Kind Kind    `json:"kind"`
	Key  float64 `json:"key"`
}
