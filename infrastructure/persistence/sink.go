// Package persistence provides the relational sink processed batches are
// appended to.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
	"github.com/helixml/minimodel/internal/database"
	"gorm.io/gorm"
)

// insertChunkSize bounds the rows per INSERT statement so wide batches stay
// under driver parameter limits. All chunks of a batch share one transaction.
const insertChunkSize = 100

// ErrNoDatabase indicates a sink built without a URL or database.
var ErrNoDatabase = errors.New("sink: no database configured")

// Sink implements pipeline.Sink over GORM. A sink built from a URL opens a
// new database for every run and closes it with the connection; a sink built
// from an open Database shares it and leaves it open.
type Sink struct {
	url    string
	db     *database.Database
	logger *slog.Logger
}

// NewSink creates a Sink that connects to url (sqlite:///… or postgres://…)
// for each run.
func NewSink(url string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{url: url, logger: logger}
}

// NewDatabaseSink creates a Sink that writes through an already-open database.
func NewDatabaseSink(db database.Database, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{db: &db, logger: logger}
}

// Connect returns a connection to the destination database.
func (s *Sink) Connect(ctx context.Context) (pipeline.Connection, error) {
	if s.db != nil {
		return &Connection{db: *s.db}, nil
	}
	if s.url == "" {
		return nil, ErrNoDatabase
	}
	db, err := database.NewDatabaseWithLogger(ctx, s.url, s.logger)
	if err != nil {
		return nil, err
	}
	return &Connection{db: db, owned: true}, nil
}

// Connection appends datasets to tables of one database.
type Connection struct {
	db    database.Database
	owned bool
}

// Append inserts every row of data into table in a single transaction.
// The table must already have a column for every dataset column.
func (c *Connection) Append(ctx context.Context, table string, data dataset.Dataset) error {
	if data.Rows() == 0 {
		return nil
	}

	records := Records(data)
	return database.WithTransaction(ctx, c.db, func(tx *gorm.DB) error {
		for start := 0; start < len(records); start += insertChunkSize {
			end := min(start+insertChunkSize, len(records))
			chunk := records[start:end]
			if err := tx.Table(table).Create(chunk).Error; err != nil {
				return fmt.Errorf("insert into %s rows %d-%d: %w", table, start, end-1, err)
			}
		}
		return nil
	})
}

// Close closes the database if the connection opened it.
func (c *Connection) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

// Records converts the dataset to insertable rows. Embedding vectors become
// database.Vector values; nulls stay nil.
func Records(data dataset.Dataset) []map[string]any {
	columns := data.Columns()
	records := make([]map[string]any, data.Rows())
	for i := range records {
		row := make(map[string]any, len(columns))
		for _, col := range columns {
			row[col.Name()] = columnValue(col.Value(i))
		}
		records[i] = row
	}
	return records
}

func columnValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case dataset.EmbeddingVector:
		if val == nil {
			return nil
		}
		return database.NewVector(val)
	default:
		return v
	}
}

var (
	_ pipeline.Sink       = (*Sink)(nil)
	_ pipeline.Connection = (*Connection)(nil)
)
