package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
	"github.com/helixml/minimodel/internal/database"
)

// QuerySource loads a dataset from the result of a SQL query.
type QuerySource struct {
	url    string
	db     *database.Database
	query  string
	args   []any
	schema Schema
	logger *slog.Logger
}

// QueryOption configures a QuerySource.
type QueryOption func(*QuerySource)

// WithQueryArgs binds positional query arguments.
func WithQueryArgs(args ...any) QueryOption {
	return func(s *QuerySource) { s.args = args }
}

// WithQuerySchema declares column types, overriding what the driver reports.
func WithQuerySchema(schema Schema) QueryOption {
	return func(s *QuerySource) { s.schema = schema }
}

// WithQueryLogger sets the logger used for the database connection.
func WithQueryLogger(logger *slog.Logger) QueryOption {
	return func(s *QuerySource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewQuerySource creates a QuerySource that opens url for each ingest.
func NewQuerySource(url, query string, opts ...QueryOption) *QuerySource {
	s := &QuerySource{url: url, query: query, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDatabaseQuerySource creates a QuerySource over an open database.
func NewDatabaseQuerySource(db database.Database, query string, opts ...QueryOption) *QuerySource {
	s := NewQuerySource("", query, opts...)
	s.db = &db
	return s
}

// Ingest runs the query and loads every result row.
func (s *QuerySource) Ingest(ctx context.Context) (dataset.Dataset, error) {
	db, closeDB, err := s.open(ctx)
	if err != nil {
		return dataset.Dataset{}, err
	}
	defer closeDB()

	rows, err := db.Session(ctx).Raw(s.query, s.args...).Rows()
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("run source query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("read column types: %w", err)
	}

	names := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		names[i] = ct.Name()
	}

	raw := make([][]any, len(columnTypes))
	for rows.Next() {
		cells := make([]any, len(columnTypes))
		ptrs := make([]any, len(columnTypes))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return dataset.Dataset{}, fmt.Errorf("scan source row: %w", err)
		}
		for i, cell := range cells {
			raw[i] = append(raw[i], normalizeDriverValue(cell))
		}
	}
	if err := rows.Err(); err != nil {
		return dataset.Dataset{}, fmt.Errorf("read source rows: %w", err)
	}

	schema := append(Schema(nil), s.schema...)
	for _, ct := range columnTypes {
		if _, declared := schema.Lookup(ct.Name()); declared {
			continue
		}
		if typ, ok := classifyDatabaseType(ct); ok {
			schema = append(schema, Field{Name: ct.Name(), Type: typ})
		}
	}

	return assemble(names, raw, schema, false)
}

func (s *QuerySource) open(ctx context.Context) (database.Database, func(), error) {
	if s.db != nil {
		return *s.db, func() {}, nil
	}
	db, err := database.NewDatabaseWithLogger(ctx, s.url, s.logger)
	if err != nil {
		return database.Database{}, nil, fmt.Errorf("open source database: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

// classifyDatabaseType maps a driver column type name to a column type.
// Unnamed types, such as SQLite expression columns, are left to inference.
func classifyDatabaseType(ct *sql.ColumnType) (dataset.ColumnType, bool) {
	name := strings.ToUpper(ct.DatabaseTypeName())
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	switch {
	case name == "":
		return "", false
	case strings.Contains(name, "INT"):
		return dataset.TypeInteger, true
	case strings.Contains(name, "FLOAT"), strings.Contains(name, "DOUBLE"),
		strings.Contains(name, "REAL"), name == "NUMERIC", name == "DECIMAL":
		return dataset.TypeFloat, true
	case strings.HasPrefix(name, "BOOL"):
		return dataset.TypeBoolean, true
	case strings.Contains(name, "TIMESTAMP"), strings.Contains(name, "DATE"):
		return dataset.TypeTimestamp, true
	case strings.Contains(name, "CHAR"), strings.Contains(name, "TEXT"),
		strings.Contains(name, "CLOB"), name == "UUID", name == "JSON", name == "JSONB":
		return dataset.TypeText, true
	default:
		return "", false
	}
}

func normalizeDriverValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

var _ pipeline.Ingester = (*QuerySource)(nil)
