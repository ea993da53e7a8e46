package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/internal/database"
	"github.com/helixml/minimodel/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleTable = `CREATE TABLE people (
	id INTEGER,
	name TEXT,
	score REAL,
	active BOOLEAN
)`

const peopleRows = `INSERT INTO people (id, name, score, active) VALUES
	(1, 'Alice', 1.5, 1),
	(2, NULL, 2.0, 0),
	(3, 'Bob', NULL, 1)`

func TestQuerySource_ClassifiesDriverTypes(t *testing.T) {
	db := testdb.WithSchema(t, peopleTable, peopleRows)

	d, err := NewDatabaseQuerySource(db, "SELECT id, name, score, active FROM people ORDER BY id").Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, d.Rows())
	assert.Equal(t, dataset.TypeInteger, columnType(t, d, "id"))
	assert.Equal(t, dataset.TypeText, columnType(t, d, "name"))
	assert.Equal(t, dataset.TypeFloat, columnType(t, d, "score"))
	assert.Equal(t, dataset.TypeBoolean, columnType(t, d, "active"))

	names, _ := d.Column("name")
	assert.Equal(t, []any{"Alice", nil, "Bob"}, names.Values())
	active, _ := d.Column("active")
	assert.Equal(t, []any{true, false, true}, active.Values())
}

func TestQuerySource_ExpressionColumnsAreInferred(t *testing.T) {
	db := testdb.WithSchema(t, peopleTable, peopleRows)

	d, err := NewDatabaseQuerySource(db, "SELECT id * 10 AS tens FROM people WHERE id > ? ORDER BY id",
		WithQueryArgs(1)).Ingest(context.Background())
	require.NoError(t, err)

	tens, _ := d.Column("tens")
	assert.Equal(t, dataset.TypeInteger, tens.Type())
	assert.Equal(t, []any{int64(20), int64(30)}, tens.Values())
}

func TestQuerySource_SchemaOverrides(t *testing.T) {
	db := testdb.WithSchema(t, peopleTable, peopleRows)

	d, err := NewDatabaseQuerySource(db, "SELECT id FROM people ORDER BY id",
		WithQuerySchema(Schema{{Name: "id", Type: dataset.TypeText}})).Ingest(context.Background())
	require.NoError(t, err)

	ids, _ := d.Column("id")
	assert.Equal(t, []any{"1", "2", "3"}, ids.Values())
}

func TestQuerySource_OpensURL(t *testing.T) {
	ctx := context.Background()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "source.db")

	setup, err := database.NewDatabase(ctx, url)
	require.NoError(t, err)
	require.NoError(t, setup.Session(ctx).Exec(peopleTable).Error)
	require.NoError(t, setup.Session(ctx).Exec(peopleRows).Error)
	require.NoError(t, setup.Close())

	d, err := NewQuerySource(url, "SELECT * FROM people").Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Rows())
}

func TestQuerySource_BadQuery(t *testing.T) {
	db := testdb.New(t)
	_, err := NewDatabaseQuerySource(db, "SELECT * FROM missing").Ingest(context.Background())
	require.Error(t, err)
}
