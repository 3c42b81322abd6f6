package sorting

import (
	"fmt"
	"math"
	"sync"
	"time"
)

var nan = math.NaN()

// Registry holds codecs in priority order. Detection tries them front to
// back and stops at the first match.
//
// A Registry is an ordinary value: build one per table, request or test.
type Registry struct {
	mu     sync.RWMutex
	codecs []Codec // priority order, front first
	loc    *time.Location
}

// Option configures a Registry.
type Option func(*Registry)

// WithLocation sets the location that date codecs parse in.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Registry) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{loc: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry returns a registry holding the generic fallbacks and the
// built-in codecs. The resulting priority is
//
//	date-foswiki, currency, formatted-number, metric, num, string
//
// Metric is the broadest of the specific detectors, so it goes last among them.
func NewDefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry(opts...)

	r.Append(NumericCodec())
	r.Append(StringCodec())

	r.Register(MetricCodec())
	r.Register(FormattedNumberCodec())
	r.Register(CurrencyCodec())
	r.Register(FoswikiDateCodec(r.loc))

	return r
}

// Location returns the location date codecs parse in.
func (r *Registry) Location() *time.Location {
	return r.loc
}

// Register inserts a codec at the front of the priority order.
// A codec of the same kind is replaced, so re-registering never leaves two
// detectors competing for the same values.
func (r *Registry) Register(c Codec) {
	r.insert(c, true)
}

// Append inserts a codec at the back of the priority order, behind every
// codec registered so far. Use it for generic fallbacks.
func (r *Registry) Append(c Codec) {
	r.insert(c, false)
}

func (r *Registry) insert(c Codec, front bool) {
	if c.Kind == "" {
		panic("sorting: codec without kind")
	}
	if c.Detect == nil {
		panic(fmt.Sprintf("sorting: codec %s has no detector", c.Kind))
	}
	if c.Pre == nil && c.Collate == nil {
		panic(fmt.Sprintf("sorting: codec %s has neither Pre nor Collate", c.Kind))
	}
	c = c.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]Codec, 0, len(r.codecs)+1)
	if front {
		kept = append(kept, c)
	}
	for _, existing := range r.codecs {
		if existing.Kind != c.Kind {
			kept = append(kept, existing)
		}
	}
	if !front {
		kept = append(kept, c)
	}
	r.codecs = kept
}

// Lookup returns the codec registered for kind.
func (r *Registry) Lookup(kind Kind) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.codecs {
		if c.Kind == kind {
			return c, true
		}
	}
	return Codec{}, false
}

// Kinds returns the registered kinds in priority order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, len(r.codecs))
	for i, c := range r.codecs {
		kinds[i] = c.Kind
	}
	return kinds
}

// Funcs returns the names of the order functions each kind provides:
// "{kind}-pre", "{kind}-asc" and "{kind}-desc", in priority order.
func (r *Registry) Funcs() []string {
	kinds := r.Kinds()
	names := make([]string, 0, len(kinds)*3)
	for _, k := range kinds {
		names = append(names, string(k)+"-pre", string(k)+"-asc", string(k)+"-desc")
	}
	return names
}

// Len returns the number of registered codecs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codecs)
}

// snapshot copies the codec list so detection runs without holding the lock.
func (r *Registry) snapshot() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Codec, len(r.codecs))
	copy(out, r.codecs)
	return out
}

// Detect returns the kind of the first codec that accepts v, or "" when none
// does.
func (r *Registry) Detect(v RawValue) Kind {
	for _, c := range r.snapshot() {
		if c.Detect(v) {
			return c.Kind
		}
	}
	return ""
}

// Classify detects v and reduces it with the matching codec. Values no codec
// accepts classify as the empty kind with a NaN key.
func (r *Registry) Classify(v RawValue) Classification {
	for _, c := range r.snapshot() {
		if c.Detect(v) {
			return Classification{Kind: c.Kind, Key: c.Key(v)}
		}
	}
	return Classification{Key: nan}
}

// DetectColumn returns the kind of the first codec that accepts every value
// of a column. A column no codec fully accepts is a string column.
func (r *Registry) DetectColumn(values []RawValue) Kind {
	for _, c := range r.snapshot() {
		if acceptsAll(c, values) {
			return c.Kind
		}
	}
	return KindString
}

func acceptsAll(c Codec, values []RawValue) bool {
	for _, v := range values {
		if !c.Detect(v) {
			return false
		}
	}
	return true
}
