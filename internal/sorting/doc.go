// Package sorting classifies table cell values and reduces them to numeric
// order keys.
//
// A cell value reaches this package as an opaque [RawValue]: the text (or
// number) exactly as it appears in a server-rendered table, markup included.
// A [Codec] recognizes one kind of value and reduces it to a float64 key that
// orders correctly under plain numeric comparison.
//
// # Codecs
//
// The built-in codecs are:
//
//   - currency: "1,234.56", "€ 12,-", "1'234,50"
//   - formatted-number: a number wrapped in one markup element, "<b>42</b> pcs"
//   - metric: a number with an SI prefixed unit, "4.9GB", "1 KB", "3cm"
//   - date-foswiki: wiki dates such as "17 May 2013 - 17:07"
//   - moment-<format>: dates in a caller supplied format, see
//     [Registry.RegisterDateFormat]
//
// plus the generic num and string fallbacks.
//
// # Registry
//
// Codecs are held by an explicit [Registry]; there is no package-level
// registry. Detection walks the codecs in priority order and stops at the
// first match:
//
//	reg := sorting.NewDefaultRegistry(sorting.WithLocation(time.UTC))
//	kind, err := reg.RegisterDateFormat("DD.MM.YYYY", "de")
//	...
//	res, err := reg.Sort(rows, []sorting.Order{{Column: 2, Dir: sorting.Desc}})
//
// [Registry.Register] inserts at the front, so codecs registered later win
// over earlier ones. Generic fallbacks are added with [Registry.Append] and
// never preempt a specific codec.
//
// # Unorderable values
//
// Reduction never fails. A value that cannot be ordered reduces to NaN, and
// [Ascending] and [Descending] place NaN after every real number. Parametric
// dates reduce unparseable input to +Inf instead, so blanks sort after real
// dates in ascending order.
package sorting
