package dataset

import "fmt"

// EmbeddingSuffix is appended to a text column's name to form the name of
// its embedding column.
const EmbeddingSuffix = "_embedding"

// EmbeddingColumnName returns the embedding column name for a text column.
func EmbeddingColumnName(column string) string {
	return column + EmbeddingSuffix
}

// EmbeddingVector is the vector representation of one text value. A nil
// vector stands for an absent value.
type EmbeddingVector []float64

// Dimension returns the number of elements.
func (v EmbeddingVector) Dimension() int { return len(v) }

// Floats returns a copy of the elements, or nil for an absent vector.
func (v EmbeddingVector) Floats() []float64 {
	if v == nil {
		return nil
	}
	cp := make([]float64, len(v))
	copy(cp, v)
	return cp
}

// BatchCount returns the number of batches of at most size rows needed to
// cover rows rows.
func BatchCount(rows, size int) int {
	if rows <= 0 || size <= 0 {
		return 0
	}
	return (rows + size - 1) / size
}

// Batch is a contiguous slice of a dataset processed and persisted as one unit.
type Batch struct {
	index  int
	offset int
	data   Dataset
}

// Index returns the 1-based position of the batch within its run.
func (b Batch) Index() int { return b.index }

// Offset returns the dataset row at which the batch starts.
func (b Batch) Offset() int { return b.offset }

// Rows returns the number of rows in the batch.
func (b Batch) Rows() int { return b.data.rows }

// Data returns the batch contents.
func (b Batch) Data() Dataset { return b.data }

// WithEmbeddings returns the batch with one vector column appended per entry
// of columns, each named after its text column. vectors[i] must hold one
// vector (or nil) per batch row.
func (b Batch) WithEmbeddings(columns []string, vectors [][]EmbeddingVector) (Batch, error) {
	if len(columns) != len(vectors) {
		return Batch{}, fmt.Errorf("embed batch %d: %d columns but %d vector sets", b.index, len(columns), len(vectors))
	}
	extra := make([]Column, len(columns))
	for i, name := range columns {
		values := make([]any, len(vectors[i]))
		for row, v := range vectors[i] {
			if v != nil {
				values[row] = v
			}
		}
		extra[i] = Column{name: EmbeddingColumnName(name), dtype: TypeVector, values: values}
	}
	data, err := b.data.WithColumns(extra...)
	if err != nil {
		return Batch{}, fmt.Errorf("embed batch %d: %w", b.index, err)
	}
	return Batch{index: b.index, offset: b.offset, data: data}, nil
}

// String returns a short description for logging.
func (b Batch) String() string {
	return fmt.Sprintf("batch %d (rows %d-%d)", b.index, b.offset, b.offset+b.data.rows-1)
}
