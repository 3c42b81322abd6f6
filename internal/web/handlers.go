package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/tablesort/internal/htmltable"
	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/metrics"
	"github.com/JonMunkholm/tablesort/internal/sorting"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

type classifyRequest struct {
	Values         []sorting.RawValue `json:"values"`
	Profile        string             `json:"profile"`
	DateTimeFormat string             `json:"dateTimeFormat"`
	DateTimeLocale string             `json:"dateTimeLocale"`
}

// classifiedValue is one classified value. Key is null for values without a
// finite order key.
type classifiedValue struct {
	Kind sorting.Kind `json:"kind"`
	Key  *float64     `json:"key"`
}

type classifyResponse struct {
	Values []classifiedValue `json:"values"`
	Kind   sorting.Kind      `json:"kind"`
}

type sortRequest struct {
	Rows           [][]sorting.RawValue `json:"rows"`
	Order          []sorting.Order      `json:"order"`
	Profile        string               `json:"profile"`
	DateTimeFormat string               `json:"dateTimeFormat"`
	DateTimeLocale string               `json:"dateTimeLocale"`
	Columns        []string             `json:"columns"`
}

type sortResponse struct {
	Rows   [][]sorting.RawValue `json:"rows"`
	Perm   []int                `json:"perm"`
	Kinds  map[int]sorting.Kind `json:"kinds"`
	Styles []widget.Style       `json:"styles,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleKinds lists the kinds of a default registry in priority order.
func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	reg := s.newRegistry()
	writeJSON(w, map[string][]string{
		"kinds": kindNames(reg.Kinds()),
		"funcs": reg.Funcs(),
	})
}

// handleDefaults returns the widget settings of a table.
func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := s.tableOptions(r.Context(), q.Get("profile"), "", "")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if v := q.Get("scroller"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: scroller %q", errBadRequest, v))
			return
		}
		opts.Scroller = b
	}
	if v := q.Get("searchMode"); v != "" {
		opts.SearchMode = v
	}
	if v := q.Get("buttons"); v != "" {
		opts.Buttons = splitList(v)
	}

	if err := opts.Normalize(); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, widget.BuildSettings(opts))
}

// handleClassify classifies a column of values.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if len(req.Values) > s.cfg.Sorting.SampleSize {
		respondError(w, r, fmt.Errorf("%w: %d values, limit %d", errTooMany, len(req.Values), s.cfg.Sorting.SampleSize))
		return
	}

	opts, err := s.tableOptions(r.Context(), req.Profile, req.DateTimeFormat, req.DateTimeLocale)
	if err != nil {
		respondError(w, r, err)
		return
	}
	reg := s.newRegistry()
	if _, err := opts.Apply(reg); err != nil {
		respondError(w, r, err)
		return
	}

	resp := classifyResponse{
		Values: make([]classifiedValue, len(req.Values)),
		Kind:   reg.DetectColumn(req.Values),
	}
	for i, v := range req.Values {
		c := reg.Classify(v)
		resp.Values[i] = classifiedValue{Kind: c.Kind, Key: finite(c.Key)}
		metrics.ValuesClassified.WithLabelValues(kindLabel(c.Kind)).Inc()
	}
	writeJSON(w, resp)
}

// handleSort sorts a JSON table.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.sortFailed(w, r, metrics.SourceJSON, err)
		return
	}
	if len(req.Rows) > s.cfg.Sorting.MaxRows {
		s.sortFailed(w, r, metrics.SourceJSON,
			fmt.Errorf("%w: %d rows, limit %d", errTooMany, len(req.Rows), s.cfg.Sorting.MaxRows))
		return
	}
	for i := range req.Order {
		req.Order[i].Dir = sorting.ParseDirection(string(req.Order[i].Dir))
	}

	opts, err := s.tableOptions(r.Context(), req.Profile, req.DateTimeFormat, req.DateTimeLocale)
	if err != nil {
		s.sortFailed(w, r, metrics.SourceJSON, err)
		return
	}

	if err := s.sorts.acquire(r.Context()); err != nil {
		s.sortFailed(w, r, metrics.SourceJSON, err)
		return
	}
	defer s.sorts.release()
	reg, rules, err := prepare(opts, s.newRegistry())
	if err != nil {
		s.sortFailed(w, r, metrics.SourceJSON, err)
		return
	}

	start := time.Now()
	res, err := reg.Sort(req.Rows, req.Order)
	if err != nil {
		s.sortFailed(w, r, metrics.SourceJSON, err)
		return
	}
	metrics.SortDuration.Observe(time.Since(start).Seconds())
	metrics.Sorts.WithLabelValues(metrics.SourceJSON).Inc()

	rows := sorting.Permute(req.Rows, res.Perm)
	resp := sortResponse{Rows: rows, Perm: res.Perm, Kinds: res.Kinds}
	if !rules.Empty() {
		resp.Styles = make([]widget.Style, len(rows))
		for i, row := range rows {
			resp.Styles[i] = evalStyle(r.Context(), rules, metrics.SourceJSON, i, rowData(row, req.Columns))
		}
	}
	writeJSON(w, resp)
}

// handleSortHTML sorts the first table of an HTML body and returns the table.
//
// Query parameters:
//   - column: header name or index; repeat for secondary orders
//   - dir: "asc" or "desc" per column
//   - profile, dateTimeFormat, dateTimeLocale: as for /api/sort
func (s *Server) handleSortHTML(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tbl, err := htmltable.Parse(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		s.sortFailed(w, r, metrics.SourceHTML, err)
		return
	}
	if tbl.Len() > s.cfg.Sorting.MaxRows {
		s.sortFailed(w, r, metrics.SourceHTML,
			fmt.Errorf("%w: %d rows, limit %d", errTooMany, tbl.Len(), s.cfg.Sorting.MaxRows))
		return
	}

	columns, dirs := q["column"], q["dir"]
	if len(columns) == 0 {
		s.sortFailed(w, r, metrics.SourceHTML, fmt.Errorf("%w: column is required", errBadRequest))
		return
	}
	orders := make([]sorting.Order, len(columns))
	for i, name := range columns {
		idx, ok := tbl.Column(name)
		if !ok {
			s.sortFailed(w, r, metrics.SourceHTML, fmt.Errorf("%w: %q", errUnknownColumn, name))
			return
		}
		orders[i] = sorting.Order{Column: idx, Dir: sorting.Asc}
		if i < len(dirs) {
			orders[i].Dir = sorting.ParseDirection(dirs[i])
		}
	}

	opts, err := s.tableOptions(r.Context(), q.Get("profile"), q.Get("dateTimeFormat"), q.Get("dateTimeLocale"))
	if err != nil {
		s.sortFailed(w, r, metrics.SourceHTML, err)
		return
	}

	if err := s.sorts.acquire(r.Context()); err != nil {
		s.sortFailed(w, r, metrics.SourceHTML, err)
		return
	}
	defer s.sorts.release()
	reg, rules, err := prepare(opts, s.newRegistry())
	if err != nil {
		s.sortFailed(w, r, metrics.SourceHTML, err)
		return
	}

	start := time.Now()
	if _, err := tbl.Sort(reg, orders); err != nil {
		s.sortFailed(w, r, metrics.SourceHTML, err)
		return
	}
	metrics.SortDuration.Observe(time.Since(start).Seconds())
	metrics.Sorts.WithLabelValues(metrics.SourceHTML).Inc()

	tbl.Restripe([]string{widget.StripeEven, widget.StripeOdd})
	if !rules.Empty() {
		for i := range tbl.Len() {
			tbl.SetStyle(i, evalStyle(r.Context(), rules, metrics.SourceHTML, i, tbl.RowData(i)))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tbl.Render(w); err != nil {
		logging.FromContext(r.Context()).Error("render table", "error", err)
	}
}

// tableOptions resolves the options of a request: the profile's options,
// overridden by a date format given with the request. The configured
// default locale fills in a missing locale.
func (s *Server) tableOptions(ctx context.Context, profile, format, locale string) (widget.Options, error) {
	var opts widget.Options
	if profile != "" {
		p, err := s.profiles.Get(ctx, profile)
		if err != nil {
			return widget.Options{}, err
		}
		opts = p.Options
	}
	if format != "" {
		opts.DateTimeFormat = format
		opts.DateTimeLocale = locale
	}
	if opts.DateTimeLocale == "" {
		opts.DateTimeLocale = s.cfg.Sorting.DefaultLocale
	}
	return opts, nil
}

// prepare registers the table's date format and compiles its row rules.
func prepare(opts widget.Options, reg *sorting.Registry) (*sorting.Registry, *widget.RowRules, error) {
	if _, err := opts.Apply(reg); err != nil {
		return nil, nil, err
	}
	rules, err := opts.Rules()
	if err != nil {
		return nil, nil, err
	}
	return reg, rules, nil
}

// evalStyle evaluates the row rules of one row. A failing rule leaves the
// row unstyled.
func evalStyle(ctx context.Context, rules *widget.RowRules, source string, i int, data map[string]string) widget.Style {
	style, err := rules.Eval(i, data)
	if err != nil {
		metrics.RuleErrors.WithLabelValues(source).Inc()
		logging.FromContext(ctx).Warn("row rule failed", "row", i, "error", err)
		return widget.Style{}
	}
	return style
}

func (s *Server) sortFailed(w http.ResponseWriter, r *http.Request, source string, err error) {
	metrics.SortErrors.WithLabelValues(source).Inc()
	respondError(w, r, err)
}

// decodeJSON decodes a size-limited request body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("decode body: %w", err)
		}
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// rowData names the cells of a row for row rules. Cells without a column
// name are keyed by index.
func rowData(row []sorting.RawValue, columns []string) map[string]string {
	data := make(map[string]string, len(row))
	for j, v := range row {
		name := strconv.Itoa(j)
		if j < len(columns) && columns[j] != "" {
			name = columns[j]
		}
		data[name] = v.String()
	}
	return data
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func kindLabel(k sorting.Kind) string {
	if k == "" {
		return "none"
	}
	return string(k)
}

func kindNames(kinds []sorting.Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
