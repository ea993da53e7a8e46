package persistence

import (
	"fmt"
	"strings"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/internal/database"
)

// columnTypes maps dataset column types to SQL types per dialect.
var columnTypes = map[string]map[dataset.ColumnType]string{
	database.DialectPostgres: {
		dataset.TypeInteger:   "BIGINT",
		dataset.TypeFloat:     "DOUBLE PRECISION",
		dataset.TypeBoolean:   "BOOLEAN",
		dataset.TypeText:      "TEXT",
		dataset.TypeTimestamp: "TIMESTAMPTZ",
		dataset.TypeVector:    "VECTOR",
	},
	database.DialectSQLite: {
		dataset.TypeInteger:   "INTEGER",
		dataset.TypeFloat:     "REAL",
		dataset.TypeBoolean:   "BOOLEAN",
		dataset.TypeText:      "TEXT",
		dataset.TypeTimestamp: "DATETIME",
		dataset.TypeVector:    "TEXT",
	},
}

// CreateTableSQL returns a CREATE TABLE statement able to receive the
// processed form of data: its columns plus one embedding column per text
// column. The statement is only generated, never executed. A positive
// dimensions pins the PostgreSQL VECTOR size.
func CreateTableSQL(dialect, table string, data dataset.Dataset, dimensions int) (string, error) {
	types, ok := columnTypes[dialect]
	if !ok {
		return "", fmt.Errorf("%w: %s", database.ErrUnsupportedDriver, dialect)
	}

	vectorType := types[dataset.TypeVector]
	if dialect == database.DialectPostgres && dimensions > 0 {
		vectorType = fmt.Sprintf("VECTOR(%d)", dimensions)
	}

	lines := make([]string, 0, data.Width()+len(data.TextColumns()))
	for _, col := range data.Columns() {
		sqlType := types[col.Type()]
		if col.Type() == dataset.TypeVector {
			sqlType = vectorType
		}
		lines = append(lines, fmt.Sprintf("    %s %s", quoteIdent(col.Name()), sqlType))
	}
	for _, name := range data.TextColumns() {
		lines = append(lines, fmt.Sprintf("    %s %s", quoteIdent(dataset.EmbeddingColumnName(name)), vectorType))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", quoteIdent(table), strings.Join(lines, ",\n")), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
