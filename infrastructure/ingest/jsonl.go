package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/helixml/minimodel/domain/dataset"
)

// DecodeJSONL reads one JSON object per line. Columns appear in the order
// their keys are first seen; a key missing from a row or set to null is null.
func DecodeJSONL(r io.Reader, schema Schema) (dataset.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var names []string
	index := map[string]int{}
	var raw [][]any
	rows := 0

	for {
		keys, values, err := decodeObject(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset.Dataset{}, fmt.Errorf("read jsonl record %d: %w", rows+1, err)
		}

		for _, key := range keys {
			if _, ok := index[key]; ok {
				continue
			}
			index[key] = len(names)
			names = append(names, key)
			raw = append(raw, make([]any, rows))
		}
		for i, name := range names {
			raw[i] = append(raw[i], values[name])
		}
		rows++
	}

	if len(names) == 0 {
		return dataset.Empty(), nil
	}
	return assemble(names, raw, schema, false)
}

// decodeObject reads the next top-level object, keeping its key order.
func decodeObject(dec *json.Decoder) ([]string, map[string]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	values := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		value, err := decodeValue(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("key %q: %w", key, err)
		}

		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
