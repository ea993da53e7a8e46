package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/helixml/minimodel/domain/dataset"
)

// DecodeCSV reads a CSV stream whose first record is the header. Empty cells
// are null. Columns the schema does not declare are inferred.
func DecodeCSV(r io.Reader, delimiter rune, schema Schema) (dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return dataset.Empty(), nil
	}
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("read csv header: %w", err)
	}

	raw := make([][]any, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset.Dataset{}, fmt.Errorf("read csv: %w", err)
		}
		for i, cell := range record {
			if cell == "" {
				raw[i] = append(raw[i], nil)
				continue
			}
			raw[i] = append(raw[i], cell)
		}
	}

	return assemble(header, raw, schema, true)
}
