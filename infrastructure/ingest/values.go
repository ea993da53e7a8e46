package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/helixml/minimodel/domain/dataset"
)

// inferenceOrder is the order candidate types are tried in. The first type
// every non-null value of a column converts to wins; text always succeeds.
var inferenceOrder = []dataset.ColumnType{
	dataset.TypeInteger,
	dataset.TypeFloat,
	dataset.TypeBoolean,
	dataset.TypeTimestamp,
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// inferType picks the narrowest column type able to hold every value.
// When parseStrings is false, string values are taken literally and can only
// become timestamps or text; CSV cells are parsed, quoted JSON strings are not.
func inferType(values []any, parseStrings bool) dataset.ColumnType {
	for _, candidate := range inferenceOrder {
		if fits(values, candidate, parseStrings) {
			return candidate
		}
	}
	return dataset.TypeText
}

func fits(values []any, typ dataset.ColumnType, parseStrings bool) bool {
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		if _, isString := v.(string); isString && !parseStrings && typ != dataset.TypeTimestamp {
			return false
		}
		if _, err := coerce(v, typ); err != nil {
			return false
		}
	}
	return seen
}

// buildColumn converts raw values into a column of typ.
func buildColumn(name string, typ dataset.ColumnType, raw []any) (dataset.Column, error) {
	values := make([]any, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		c, err := coerce(v, typ)
		if err != nil {
			return dataset.Column{}, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		values[i] = c
	}
	return dataset.NewColumn(name, typ, values), nil
}

// coerce converts a decoded value to the Go representation of typ:
// int64, float64, bool, time.Time or string.
func coerce(v any, typ dataset.ColumnType) (any, error) {
	switch typ {
	case dataset.TypeInteger:
		return toInt(v)
	case dataset.TypeFloat:
		return toFloat(v)
	case dataset.TypeBoolean:
		return toBool(v)
	case dataset.TypeTimestamp:
		return toTime(v)
	case dataset.TypeText:
		return toText(v)
	default:
		return nil, fmt.Errorf("cannot load %s values", typ)
	}
}

func toInt(v any) (any, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case json.Number:
		return val.Int64()
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return int64(val), nil
		}
	case string:
		return strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
	}
	return nil, fmt.Errorf("%v (%T) is not an integer", v, v)
}

func toFloat(v any) (any, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case json.Number:
		return val.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
	}
	return nil, fmt.Errorf("%v (%T) is not a number", v, v)
}

func toBool(v any) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case int64:
		if val == 0 || val == 1 {
			return val == 1, nil
		}
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	}
	return nil, fmt.Errorf("%v (%T) is not a boolean", v, v)
}

func toTime(v any) (any, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%q is not a timestamp", val)
	}
	return nil, fmt.Errorf("%v (%T) is not a timestamp", v, v)
}

func toText(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return fmt.Sprint(val), nil
	}
}
