package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tablesort/internal/sorting"
)

// csvTable is a CSV file split into an optional header and body rows.
type csvTable struct {
	header []string
	rows   [][]string
}

func readCSV(r io.Reader, header bool) (*csvTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	t := &csvTable{rows: records}
	if header && len(records) > 0 {
		t.header, t.rows = records[0], records[1:]
	}
	return t, nil
}

// column resolves a header name, compared without case, or a column index.
func (t *csvTable) column(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, h := range t.header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, true
		}
	}
	if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < t.width() {
		return i, true
	}
	return 0, false
}

func (t *csvTable) width() int {
	w := len(t.header)
	for _, row := range t.rows {
		w = max(w, len(row))
	}
	return w
}

// name returns the header of column i, or its index without a header.
func (t *csvTable) name(i int) string {
	if i < len(t.header) && t.header[i] != "" {
		return t.header[i]
	}
	return strconv.Itoa(i)
}

func (t *csvTable) values() [][]sorting.RawValue {
	out := make([][]sorting.RawValue, len(t.rows))
	for i, row := range t.rows {
		out[i] = sorting.Texts(row...)
	}
	return out
}

// columnValues returns column i of every row. Short rows give null cells.
func (t *csvTable) columnValues(i int) []sorting.RawValue {
	out := make([]sorting.RawValue, len(t.rows))
	for r, row := range t.rows {
		if i < len(row) {
			out[r] = sorting.Text(row[i])
		} else {
			out[r] = sorting.Null()
		}
	}
	return out
}

func (t *csvTable) write(w io.Writer, perm []int) error {
	cw := csv.NewWriter(w)
	if t.header != nil {
		if err := cw.Write(t.header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(sorting.Permute(t.rows, perm)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
