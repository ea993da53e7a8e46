package dataset

import (
	"errors"
	"fmt"
)

// Dataset errors.
var (
	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrColumnLength indicates columns of unequal length.
	ErrColumnLength = errors.New("column length mismatch")
)

// Dataset is an ordered set of equally long columns. Row order and column
// identity never change once built.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New creates a Dataset from columns. Columns must have unique names and the
// same length.
func New(columns ...Column) (Dataset, error) {
	d := Dataset{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, ok := d.index[c.name]; ok {
			return Dataset{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return Dataset{}, fmt.Errorf("%w: %s has %d rows, expected %d", ErrColumnLength, c.name, c.Len(), d.rows)
		}
		d.index[c.name] = len(d.columns)
		d.columns = append(d.columns, c)
	}
	return d, nil
}

// Empty returns a dataset with no columns and no rows.
func Empty() Dataset {
	return Dataset{index: map[string]int{}}
}

// Rows returns the number of rows.
func (d Dataset) Rows() int { return d.rows }

// Width returns the number of columns.
func (d Dataset) Width() int { return len(d.columns) }

// Columns returns the columns in declaration order.
func (d Dataset) Columns() []Column {
	cols := make([]Column, len(d.columns))
	copy(cols, d.columns)
	return cols
}

// ColumnNames returns the column names in declaration order.
func (d Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// Column returns the named column.
func (d Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// TextColumns returns the names of columns declared as text, in order.
func (d Dataset) TextColumns() []string {
	var names []string
	for _, c := range d.columns {
		if c.dtype.IsText() {
			names = append(names, c.name)
		}
	}
	return names
}

// Row returns row i as a column name to value map.
func (d Dataset) Row(i int) map[string]any {
	row := make(map[string]any, len(d.columns))
	for _, c := range d.columns {
		row[c.name] = c.values[i]
	}
	return row
}

// Records returns every row as a column name to value map, in row order.
func (d Dataset) Records() []map[string]any {
	records := make([]map[string]any, d.rows)
	for i := range records {
		records[i] = d.Row(i)
	}
	return records
}

// Slice returns rows [start, end) as a new Dataset. Bounds are clamped to
// the dataset.
func (d Dataset) Slice(start, end int) Dataset {
	start = max(0, min(start, d.rows))
	end = max(start, min(end, d.rows))
	cols := make([]Column, len(d.columns))
	for i, c := range d.columns {
		cols[i] = c.slice(start, end)
	}
	return Dataset{columns: cols, index: d.index, rows: end - start}
}

// WithColumns returns a copy of the dataset with the given columns appended.
func (d Dataset) WithColumns(columns ...Column) (Dataset, error) {
	all := make([]Column, 0, len(d.columns)+len(columns))
	all = append(all, d.columns...)
	all = append(all, columns...)
	return New(all...)
}

// Batches partitions the dataset into contiguous batches of at most size rows,
// starting at row 0. A dataset without rows yields no batches. Size must be
// positive.
func (d Dataset) Batches(size int) []Batch {
	if size <= 0 || d.rows == 0 {
		return nil
	}
	batches := make([]Batch, 0, BatchCount(d.rows, size))
	for start := 0; start < d.rows; start += size {
		batches = append(batches, Batch{
			index:  len(batches) + 1,
			offset: start,
			data:   d.Slice(start, start+size),
		})
	}
	return batches
}
