// Package testdb provides a shared test database helper for fast,
// realistic testing against an in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/minimodel/internal/database"
)

// ProcessedSchema creates a minimodel_processed table for a dataset with an
// integer id column and a text name column.
const ProcessedSchema = `CREATE TABLE minimodel_processed (
	id INTEGER,
	name TEXT,
	name_embedding TEXT
)`

// New creates an empty in-memory SQLite database.
// The database is automatically closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WithSchema creates an in-memory SQLite database and executes the given
// SQL statements to set up a schema.
func WithSchema(t *testing.T, statements ...string) database.Database {
	t.Helper()
	ctx := context.Background()
	db := New(t)
	for _, stmt := range statements {
		if err := db.Session(ctx).Exec(stmt).Error; err != nil {
			t.Fatalf("testdb.WithSchema: %v\nSQL: %s", err, stmt)
		}
	}
	return db
}

// Count returns the number of rows in table.
func Count(t *testing.T, db database.Database, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Session(context.Background()).Table(table).Count(&n).Error; err != nil {
		t.Fatalf("testdb.Count: %v", err)
	}
	return n
}
