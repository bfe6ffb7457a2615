package repository

import (
	"fmt"
	"log/slog"

	"github.com/allenwoods/naive-coreterra/internal/store"
)

var ErrNotFound = store.ErrNotFound

func decodeRecord[T any](record store.Record) (T, error) {
	var value T
	if err := record.Decode(&value); err != nil {
		return value, err
	}
	return value, nil
}

// decodeRecords converts every record it can; records that do not fit the
// model are logged and skipped so one bad row does not hide the collection.
func decodeRecords[T any](collection store.Collection, records []store.Record) []T {
	values := make([]T, 0, len(records))
	for _, record := range records {
		value, err := decodeRecord[T](record)
		if err != nil {
			slog.Warn("skipping malformed record", "collection", collection, "id", record.ID(), "error", err)
			continue
		}
		values = append(values, value)
	}
	return values
}

// overlay writes the JSON fields of value over existing, keeping any keys the
// typed model does not know about.
func overlay(existing store.Record, value any) (store.Record, error) {
	fields, err := store.RecordOf(value)
	if err != nil {
		return nil, err
	}
	for key, field := range fields {
		existing[key] = field
	}
	return existing, nil
}

// mutateTyped decodes the stored record, lets change edit the typed value, and
// overlays the result, all inside one store mutation.
func mutateTyped[T any](s *store.Store, collection store.Collection, id any, change func(*T) error) (T, error) {
	var result T
	_, err := s.Mutate(collection, id, func(record store.Record) (store.Record, error) {
		value, err := decodeRecord[T](record)
		if err != nil {
			return nil, fmt.Errorf("decoding %s %v: %w", collection, id, err)
		}
		if err := change(&value); err != nil {
			return nil, err
		}
		result = value
		return overlay(record, value)
	})
	return result, err
}
