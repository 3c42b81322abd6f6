package widget

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tablesort/internal/sorting"
)

// ErrInvalidOption is returned by Normalize for options the widget cannot use.
var ErrInvalidOption = errors.New("invalid table option")

var autoColorSplit = regexp.MustCompile(`\s*,\s*`)

// Select configures the checkbox column.
type Select struct {
	// Property names the column whose raw value identifies a row.
	Property string `json:"property" yaml:"property"`
	// Selection lists the initially selected row values.
	Selection []string `json:"selection,omitempty" yaml:"selection"`
	// Info is always off; the widget renders its own selection count.
	Info bool `json:"info" yaml:"-"`
}

// RowGroup groups rows by the values of one or more columns. A data source
// is a column index or a column name.
type RowGroup struct {
	DataSrc []any `json:"dataSrc" yaml:"dataSrc"`
}

// Options are the per-table settings a page author writes.
type Options struct {
	DateTimeFormat string    `json:"dateTimeFormat,omitempty" yaml:"dateTimeFormat"`
	DateTimeLocale string    `json:"dateTimeLocale,omitempty" yaml:"dateTimeLocale"`
	Scroller       bool      `json:"scroller,omitempty" yaml:"scroller"`
	SearchMode     string    `json:"searchMode,omitempty" yaml:"searchMode"`
	Buttons        []string  `json:"buttons,omitempty" yaml:"buttons"`
	Paging         *bool     `json:"paging,omitempty" yaml:"paging"`
	Searching      *bool     `json:"searching,omitempty" yaml:"searching"`
	PageLength     int       `json:"pageLength,omitempty" yaml:"pageLength"`
	Select         *Select   `json:"select,omitempty" yaml:"select"`
	RowGroup       *RowGroup `json:"rowGroup,omitempty" yaml:"rowGroup"`
	RowCss         string    `json:"rowCss,omitempty" yaml:"rowCss"`
	RowClass       string    `json:"rowClass,omitempty" yaml:"rowClass"`
	AutoColor      string    `json:"autoColor,omitempty" yaml:"autoColor"`
}

// Normalize brings options into the form the widget expects and validates
// them. Row rules are compiled so a broken rule is reported here rather than
// on first use.
func (o *Options) Normalize() error {
	o.SearchMode = strings.ToLower(strings.TrimSpace(o.SearchMode))
	switch o.SearchMode {
	case "", "default", SearchMulti:
	default:
		return fmt.Errorf("%w: searchMode %q", ErrInvalidOption, o.SearchMode)
	}

	if o.PageLength < 0 {
		return fmt.Errorf("%w: pageLength %d", ErrInvalidOption, o.PageLength)
	}

	if o.Select != nil {
		o.Select.Info = false
	}

	if o.RowGroup != nil {
		for i, src := range o.RowGroup.DataSrc {
			o.RowGroup.DataSrc[i] = normalizeDataSrc(src)
		}
	}

	if _, err := o.Rules(); err != nil {
		return err
	}
	return nil
}

// normalizeDataSrc turns integer-looking sources into column indexes.
func normalizeDataSrc(src any) any {
	switch v := src.(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case int64:
		return int(v)
	}
	return src
}

// AutoColorColumns returns the column names listed in AutoColor.
func (o Options) AutoColorColumns() []string {
	s := strings.TrimSpace(o.AutoColor)
	if s == "" {
		return nil
	}
	var cols []string
	for _, c := range autoColorSplit.Split(s, -1) {
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// Apply registers the table's date format with reg. It returns the kind of
// the date codec, or "" when the table has no date format.
func (o Options) Apply(reg *sorting.Registry) (sorting.Kind, error) {
	if o.DateTimeFormat == "" {
		return "", nil
	}
	return reg.RegisterDateFormat(o.DateTimeFormat, o.DateTimeLocale)
}

// Rules compiles the table's row rules.
func (o Options) Rules() (*RowRules, error) {
	rules := &RowRules{}
	if o.RowCss != "" {
		r, err := CompileRowRule(RuleCSS, o.RowCss)
		if err != nil {
			return nil, err
		}
		rules.css = r
	}
	if o.RowClass != "" {
		r, err := CompileRowRule(RuleClass, o.RowClass)
		if err != nil {
			return nil, err
		}
		rules.class = r
	}
	return rules, nil
}

// BuildSettings merges the defaults, the layout and the options into the
// client settings of one table.
func BuildSettings(opts Options) Settings {
	s := DefaultSettings()

	s.Dom = Layout(opts)
	s.ContainerClasses = ContainerClasses(opts)
	s.Scroller = opts.Scroller
	s.Buttons = opts.Buttons
	s.DateTimeFormat = opts.DateTimeFormat
	s.DateTimeLocale = opts.DateTimeLocale
	s.AutoColor = opts.AutoColorColumns()

	if opts.Paging != nil {
		s.Paging = *opts.Paging
	}
	if opts.Searching != nil {
		s.Searching = *opts.Searching
	}
	if opts.PageLength > 0 {
		s.PageLength = opts.PageLength
	}
	if opts.Select != nil {
		sel := *opts.Select
		sel.Info = false
		s.Select = &sel
	}
	if opts.RowGroup != nil {
		s.RowGroup = opts.RowGroup
	}
	return s
}
