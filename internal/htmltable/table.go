// Package htmltable reads, sorts and writes back HTML tables as rendered by
// the wiki.
package htmltable

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JonMunkholm/tablesort/internal/sorting"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

var (
	// ErrNoTable is returned when a document holds no table.
	ErrNoTable = errors.New("no table in document")
	// ErrPermutation is returned by Reorder for a permutation that does not
	// match the body rows.
	ErrPermutation = errors.New("invalid row permutation")
)

// Table is the first table of a parsed document.
type Table struct {
	node   *html.Node
	header []*html.Node // th cells of the header row
	rows   []*html.Node // body tr elements in document order
}

// Parse reads an HTML document or fragment and returns its first table.
func Parse(r io.Reader) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	node := findFirst(doc, atom.Table)
	if node == nil {
		return nil, ErrNoTable
	}

	t := &Table{node: node}
	for _, tr := range findAll(node, atom.Tr) {
		cells := cellsOf(tr)
		switch {
		case hasCell(cells, atom.Td):
			t.rows = append(t.rows, tr)
		case t.header == nil && len(cells) > 0:
			t.header = cells
		}
	}
	return t, nil
}

// Len returns the number of body rows.
func (t *Table) Len() int { return len(t.rows) }

// Headers returns the text of the header cells.
func (t *Table) Headers() []string {
	out := make([]string, len(t.header))
	for i, th := range t.header {
		out[i] = textContent(th)
	}
	return out
}

// Column resolves a column by its header text, compared without case. A
// name that is a valid column index selects that column.
func (t *Table) Column(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, h := range t.Headers() {
		if strings.EqualFold(h, name) {
			return i, true
		}
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < t.width() {
		return i, true
	}
	return 0, false
}

// width is the widest row, header included.
func (t *Table) width() int {
	w := len(t.header)
	for _, tr := range t.rows {
		w = max(w, len(cellsOf(tr)))
	}
	return w
}

// Values returns the body cells as raw values. Each cell's value is its
// inner HTML, trimmed. Short rows are padded with null cells.
func (t *Table) Values() [][]sorting.RawValue {
	w := t.width()
	out := make([][]sorting.RawValue, len(t.rows))
	for i, tr := range t.rows {
		row := make([]sorting.RawValue, w)
		cells := cellsOf(tr)
		for j := range row {
			if j < len(cells) {
				row[j] = sorting.Text(innerHTML(cells[j]))
			} else {
				row[j] = sorting.Null()
			}
		}
		out[i] = row
	}
	return out
}

// RowData maps the header names of row i to the text of its cells.
func (t *Table) RowData(i int) map[string]string {
	headers := t.Headers()
	cells := cellsOf(t.rows[i])
	data := make(map[string]string, len(cells))
	for j, c := range cells {
		key := strconv.Itoa(j)
		if j < len(headers) && headers[j] != "" {
			key = headers[j]
		}
		data[key] = textContent(c)
	}
	return data
}

// UnlinkHeaders replaces links in the header cells with their text.
func (t *Table) UnlinkHeaders() {
	for _, th := range t.header {
		for _, a := range findAll(th, atom.A) {
			text := &html.Node{Type: html.TextNode, Data: textContent(a)}
			a.Parent.InsertBefore(text, a)
			a.Parent.RemoveChild(a)
		}
	}
}

// Reorder moves the body rows into the order of perm, where perm[i] is the
// current index of the row that goes to position i. Rows are collected
// under the parent of the first body row.
func (t *Table) Reorder(perm []int) error {
	if len(perm) != len(t.rows) {
		return fmt.Errorf("%w: %d indexes for %d rows", ErrPermutation, len(perm), len(t.rows))
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return fmt.Errorf("%w: index %d", ErrPermutation, p)
		}
		seen[p] = true
	}
	if len(t.rows) == 0 {
		return nil
	}

	parent := t.rows[0].Parent
	for _, tr := range t.rows {
		tr.Parent.RemoveChild(tr)
	}
	rows := sorting.Permute(t.rows, perm)
	for _, tr := range rows {
		parent.AppendChild(tr)
	}
	t.rows = rows
	return nil
}

// Sort orders the body rows with reg and returns the sort result.
func (t *Table) Sort(reg *sorting.Registry, orders []sorting.Order) (sorting.Result, error) {
	res, err := reg.Sort(t.Values(), orders)
	if err != nil {
		return sorting.Result{}, err
	}
	if err := t.Reorder(res.Perm); err != nil {
		return sorting.Result{}, err
	}
	return res, nil
}

// Restripe removes every class in classes from the body rows and then adds
// them again in turn, starting with the first.
func (t *Table) Restripe(classes []string) {
	for i, tr := range t.rows {
		fields := slices.DeleteFunc(strings.Fields(attr(tr, "class")), func(c string) bool {
			return slices.Contains(classes, c)
		})
		if len(classes) > 0 {
			fields = append(fields, classes[i%len(classes)])
		}
		setAttr(tr, "class", strings.Join(fields, " "))
	}
}

// SetStyle adds a row style to body row i.
func (t *Table) SetStyle(i int, s widget.Style) {
	if s.IsZero() {
		return
	}
	tr := t.rows[i]
	if s.Class != "" {
		fields := strings.Fields(attr(tr, "class"))
		if !slices.Contains(fields, s.Class) {
			fields = append(fields, s.Class)
		}
		setAttr(tr, "class", strings.Join(fields, " "))
	}
	if len(s.CSS) > 0 {
		props := make([]string, 0, len(s.CSS))
		for _, k := range slices.Sorted(maps.Keys(s.CSS)) {
			props = append(props, k+": "+s.CSS[k])
		}
		style := strings.Join(props, "; ")
		if old := strings.TrimSpace(attr(tr, "style")); old != "" {
			style = strings.TrimSuffix(old, ";") + "; " + style
		}
		setAttr(tr, "style", style)
	}
}

// Render writes the table element.
func (t *Table) Render(w io.Writer) error {
	return html.Render(w, t.node)
}

// String renders the table to a string.
func (t *Table) String() string {
	var buf bytes.Buffer
	if err := t.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
