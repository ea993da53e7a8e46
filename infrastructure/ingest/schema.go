package ingest

import (
	"fmt"

	"github.com/helixml/minimodel/domain/dataset"
)

// Field declares the type of one source column.
type Field struct {
	Name string
	Type dataset.ColumnType
}

// Schema declares column types for a source. Columns it does not name are
// inferred from their values.
type Schema []Field

// Lookup returns the declared type of the named column.
func (s Schema) Lookup(name string) (dataset.ColumnType, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// ParseField builds a Field from a type name, accepting the aliases
// dataset.ParseColumnType understands.
func ParseField(name, typeName string) (Field, error) {
	typ, ok := dataset.ParseColumnType(typeName)
	if !ok || typ == dataset.TypeVector {
		return Field{}, fmt.Errorf("column %q: unsupported type %q", name, typeName)
	}
	return Field{Name: name, Type: typ}, nil
}

// assemble turns raw column values into a dataset, applying the schema where
// it names a column and inference elsewhere.
func assemble(names []string, raw [][]any, schema Schema, parseStrings bool) (dataset.Dataset, error) {
	columns := make([]dataset.Column, len(names))
	for i, name := range names {
		typ, declared := schema.Lookup(name)
		if !declared {
			typ = inferType(raw[i], parseStrings)
		}
		col, err := buildColumn(name, typ, raw[i])
		if err != nil {
			return dataset.Dataset{}, err
		}
		columns[i] = col
	}
	return dataset.New(columns...)
}
