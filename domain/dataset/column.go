// Package dataset provides the in-memory tabular model fed through the
// embedding pipeline: typed columns, datasets, batches and embedding vectors.
package dataset

import "strings"

// ColumnType is the declared value type of a column.
type ColumnType string

// ColumnType values.
const (
	TypeInteger   ColumnType = "integer"
	TypeFloat     ColumnType = "float"
	TypeBoolean   ColumnType = "boolean"
	TypeText      ColumnType = "text"
	TypeTimestamp ColumnType = "timestamp"
	TypeVector    ColumnType = "vector"
)

// ParseColumnType maps a type name (including common aliases) to a ColumnType.
// The second result is false when the name is not recognised.
func ParseColumnType(s string) (ColumnType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "int64", "bigint", "smallint":
		return TypeInteger, true
	case "float", "float64", "double", "real", "numeric", "decimal":
		return TypeFloat, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "text", "string", "utf8", "varchar":
		return TypeText, true
	case "timestamp", "datetime", "date", "time":
		return TypeTimestamp, true
	case "vector", "embedding":
		return TypeVector, true
	default:
		return "", false
	}
}

// String returns the type name.
func (t ColumnType) String() string { return string(t) }

// IsText reports whether values of this type are eligible for embedding.
func (t ColumnType) IsText() bool { return t == TypeText }

// Column is a named, typed sequence of values. A nil value is null.
// Immutable value object.
type Column struct {
	name   string
	dtype  ColumnType
	values []any
}

// NewColumn creates a Column. The values slice is copied.
func NewColumn(name string, dtype ColumnType, values []any) Column {
	v := make([]any, len(values))
	copy(v, values)
	return Column{name: name, dtype: dtype, values: v}
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Type returns the declared column type.
func (c Column) Type() ColumnType { return c.dtype }

// Len returns the number of values.
func (c Column) Len() int { return len(c.values) }

// Value returns the value at row i, or nil when it is null.
func (c Column) Value(i int) any { return c.values[i] }

// IsNull reports whether the value at row i is null.
func (c Column) IsNull(i int) bool { return c.values[i] == nil }

// Values returns a copy of all values.
func (c Column) Values() []any {
	v := make([]any, len(c.values))
	copy(v, c.values)
	return v
}

// slice returns a view of rows [start, end). Columns are immutable, so the
// backing array is shared.
func (c Column) slice(start, end int) Column {
	return Column{name: c.name, dtype: c.dtype, values: c.values[start:end:end]}
}
