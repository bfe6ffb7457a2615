package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Record is one JSON object of a collection. Numbers read from disk are kept
// as json.Number so integer ids survive a round trip unchanged.
type Record map[string]any

// Clone copies the record deeply: nested objects and lists are copied too, so
// callers can modify the result without touching the cached document.
func (record Record) Clone() Record {
	if record == nil {
		return nil
	}
	cloned := make(Record, len(record))
	for key, value := range record {
		cloned[key] = cloneValue(value)
	}
	return cloned
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		cloned := make(map[string]any, len(typed))
		for key, nested := range typed {
			cloned[key] = cloneValue(nested)
		}
		return cloned
	case Record:
		return typed.Clone()
	case []any:
		cloned := make([]any, len(typed))
		for i, nested := range typed {
			cloned[i] = cloneValue(nested)
		}
		return cloned
	case []string:
		return slices.Clone(typed)
	case []map[string]any:
		cloned := make([]map[string]any, len(typed))
		for i, nested := range typed {
			cloned[i] = cloneValue(nested).(map[string]any)
		}
		return cloned
	default:
		return value
	}
}

func (record Record) HasID() bool {
	value, ok := record["id"]
	return ok && value != nil
}

func (record Record) ID() any {
	return record["id"]
}

// Decode converts the record into a typed value through its JSON form.
func (record Record) Decode(target any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}

// RecordOf converts a typed value into a record. Fields omitted by the
// value's JSON encoding are absent from the record, which is what makes typed
// patches with omitempty pointers merge only what they set.
func RecordOf(value any) (Record, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var record Record
	if err := decoder.Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding value as record: %w", err)
	}
	if record == nil {
		record = Record{}
	}
	return record, nil
}

// IDString renders an id the way it is compared: ids match when their string
// forms match, so 7, json.Number("7") and "7" all address the same record.
func IDString(id any) string {
	switch value := id.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

func integerID(id any) (int64, bool) {
	switch value := id.(type) {
	case json.Number:
		n, err := value.Int64()
		return n, err == nil
	case int:
		return int64(value), true
	case int64:
		return value, true
	case float64:
		if value == math.Trunc(value) {
			return int64(value), true
		}
	}
	return 0, false
}

func nextID(records []Record) int64 {
	if len(records) == 0 {
		return 1
	}
	var highest int64
	for i, record := range records {
		n, _ := integerID(record.ID())
		if i == 0 || n > highest {
			highest = n
		}
	}
	return highest + 1
}

func indexOf(records []Record, id any) int {
	want := IDString(id)
	for i, record := range records {
		if !record.HasID() {
			continue
		}
		if IDString(record.ID()) == want {
			return i
		}
	}
	return -1
}

func cloneRecords(records []Record) []Record {
	cloned := make([]Record, len(records))
	for i, record := range records {
		cloned[i] = record.Clone()
	}
	return cloned
}
