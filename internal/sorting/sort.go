package sorting

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrColumnRange is returned when an order names a column a row lacks.
var ErrColumnRange = errors.New("column out of range")

// Order sorts by one column.
type Order struct {
	Column int       `json:"column"`
	Dir    Direction `json:"dir"`
}

// Result is the outcome of Sort.
type Result struct {
	// Perm lists input row indexes in sorted order.
	Perm []int
	// Kinds holds the detected kind of every ordered column.
	Kinds map[int]Kind
}

// sortColumn carries the precomputed keys of one ordered column.
type sortColumn struct {
	cmp  CompareFunc
	dir  Direction
	nums []float64
	text []string
}

func (c sortColumn) compare(a, b int) int {
	if c.text != nil {
		if c.dir == Desc {
			return strings.Compare(c.text[b], c.text[a])
		}
		return strings.Compare(c.text[a], c.text[b])
	}
	return c.cmp(c.nums[a], c.nums[b])
}

// Sort orders rows by the given columns, first order first. Each column's
// kind is detected over all its cells and every cell is reduced once. The
// sort is stable: rows that tie on every column keep their input order.
func (r *Registry) Sort(rows [][]RawValue, orders []Order) (Result, error) {
	kinds := make(map[int]Kind, len(orders))
	cols := make([]sortColumn, 0, len(orders))

	for _, o := range orders {
		values, err := columnValues(rows, o.Column)
		if err != nil {
			return Result{}, err
		}

		kind, ok := kinds[o.Column]
		if !ok {
			kind = r.DetectColumn(values)
			kinds[o.Column] = kind
		}
		codec, ok := r.Lookup(kind)
		if !ok {
			codec = StringCodec()
		}

		col := sortColumn{cmp: codec.Compare(o.Dir), dir: o.Dir}
		if codec.Collate != nil {
			col.text = make([]string, len(values))
			for i, v := range values {
				col.text[i] = codec.Collate(v)
			}
		} else {
			col.nums = make([]float64, len(values))
			for i, v := range values {
				col.nums[i] = codec.Pre(v)
			}
		}
		cols = append(cols, col)
	}

	perm := make([]int, len(rows))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		for _, col := range cols {
			if c := col.compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	})

	return Result{Perm: perm, Kinds: kinds}, nil
}

func columnValues(rows [][]RawValue, column int) ([]RawValue, error) {
	values := make([]RawValue, len(rows))
	for i, row := range rows {
		if column < 0 || column >= len(row) {
			return nil, fmt.Errorf("%w: column %d, row %d has %d cells", ErrColumnRange, column, i, len(row))
		}
		values[i] = row[column]
	}
	return values, nil
}

// Permute returns items rearranged by a permutation from Result.Perm.
func Permute[T any](items []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, idx := range perm {
		out[i] = items[idx]
	}
	return out
}
