package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Vector wraps a float64 slice for use as a column value. It reads and writes
// the pgvector text format "[1,2,3]", which PostgreSQL casts into VECTOR
// columns and SQLite stores as TEXT. A nil Vector is SQL NULL.
type Vector struct {
	floats []float64
}

// NewVector creates a Vector from a float64 slice. The input is copied;
// a nil input yields a NULL vector.
func NewVector(floats []float64) Vector {
	if floats == nil {
		return Vector{}
	}
	cp := make([]float64, len(floats))
	copy(cp, floats)
	return Vector{floats: cp}
}

// Floats returns a copy of the elements, or nil for a NULL vector.
func (v Vector) Floats() []float64 {
	if v.floats == nil {
		return nil
	}
	cp := make([]float64, len(v.floats))
	copy(cp, v.floats)
	return cp
}

// Dimension returns the number of elements in the vector.
func (v Vector) Dimension() int {
	return len(v.floats)
}

// IsNull reports whether the vector is SQL NULL.
func (v Vector) IsNull() bool {
	return v.floats == nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(value any) error {
	if value == nil {
		v.floats = nil
		return nil
	}

	var raw string
	switch val := value.(type) {
	case string:
		raw = val
	case []byte:
		raw = string(val)
	default:
		return fmt.Errorf("cannot scan %T into Vector", value)
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if strings.TrimSpace(raw) == "" {
		v.floats = []float64{}
		return nil
	}

	parts := strings.Split(raw, ",")
	floats := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("parse element %d: %w", i, err)
		}
		floats[i] = f
	}

	v.floats = floats
	return nil
}

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	if v.floats == nil {
		return nil, nil
	}
	return v.String(), nil
}

// GormDataType implements schema.GormDataTypeInterface. GORM cannot derive
// a type from Value because a zero Vector is NULL.
func (Vector) GormDataType() string {
	return "vector"
}

// GormDBDataType implements migrator.GormDataTypeInterface.
func (Vector) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == DialectPostgres {
		return "vector"
	}
	return "text"
}

// String returns the vector literal "[1,2,3]".
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(len(v.floats)*12 + 2)
	b.WriteByte('[')
	for i, f := range v.floats {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
