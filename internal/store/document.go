package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var errNoChange = errors.New("no change")

type document struct {
	name     string
	path     string
	onReload func(document string)

	mu          sync.RWMutex
	loaded      bool
	modTime     time.Time
	collections map[string][]Record
	// top-level keys that are not lists of records, written back untouched
	extra map[string]json.RawMessage
}

func (doc *document) snapshot(key string) ([]Record, error) {
	info, statErr := os.Stat(doc.path)

	doc.mu.RLock()
	if doc.fresh(info, statErr) {
		records := cloneRecords(doc.collections[key])
		doc.mu.RUnlock()
		return records, nil
	}
	doc.mu.RUnlock()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if err := doc.refresh(); err != nil {
		return nil, err
	}
	return cloneRecords(doc.collections[key]), nil
}

func (doc *document) fresh(info fs.FileInfo, statErr error) bool {
	if !doc.loaded {
		return false
	}
	if statErr != nil {
		return errors.Is(statErr, fs.ErrNotExist)
	}
	return !info.ModTime().After(doc.modTime)
}

// refresh re-reads the file when it is newer than the cached copy. Callers
// must hold the write lock.
func (doc *document) refresh() error {
	info, err := os.Stat(doc.path)
	if errors.Is(err, fs.ErrNotExist) {
		if !doc.loaded {
			doc.collections = make(map[string][]Record)
			doc.extra = make(map[string]json.RawMessage)
			doc.loaded = true
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking document %s: %w", doc.name, err)
	}
	if doc.loaded && !info.ModTime().After(doc.modTime) {
		return nil
	}

	data, err := os.ReadFile(doc.path)
	if err != nil {
		return fmt.Errorf("reading document %s: %w", doc.name, err)
	}
	collections, extra, err := decodeDocument(data)
	if err != nil {
		return fmt.Errorf("decoding document %s: %w", doc.name, err)
	}

	doc.collections = collections
	doc.extra = extra
	doc.modTime = info.ModTime()
	doc.loaded = true

	slog.Debug("loaded document", "document", doc.name, "modified", doc.modTime)
	if doc.onReload != nil {
		doc.onReload(doc.name)
	}
	return nil
}

// modify runs change against a working copy of the document and persists the
// result. The cache only takes the new state once the file has been replaced.
func (doc *document) modify(change func(map[string][]Record) error) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()

	if err := doc.refresh(); err != nil {
		return err
	}

	working := make(map[string][]Record, len(doc.collections))
	for key, records := range doc.collections {
		working[key] = append([]Record(nil), records...)
	}

	if err := change(working); err != nil {
		return err
	}

	modTime, err := doc.write(working)
	if err != nil {
		return err
	}
	doc.collections = working
	doc.modTime = modTime
	return nil
}

// write replaces the file atomically: the document is written to a temporary
// file in the same directory, synced, then renamed over the original.
func (doc *document) write(collections map[string][]Record) (time.Time, error) {
	payload := make(map[string]any, len(collections)+len(doc.extra))
	for key, raw := range doc.extra {
		payload[key] = raw
	}
	for key, records := range collections {
		if records == nil {
			records = []Record{}
		}
		payload[key] = records
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return time.Time{}, fmt.Errorf("encoding document %s: %w", doc.name, err)
	}

	directory := filepath.Dir(doc.path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return time.Time{}, fmt.Errorf("creating data directory: %w", err)
	}

	temp, err := os.CreateTemp(directory, "."+doc.name+".*.tmp")
	if err != nil {
		return time.Time{}, fmt.Errorf("creating temp file for %s: %w", doc.name, err)
	}
	tempPath := temp.Name()
	cleanup := func() {
		temp.Close()
		os.Remove(tempPath)
	}

	if _, err := temp.Write(buffer.Bytes()); err != nil {
		cleanup()
		return time.Time{}, fmt.Errorf("writing document %s: %w", doc.name, err)
	}
	if err := temp.Sync(); err != nil {
		cleanup()
		return time.Time{}, fmt.Errorf("syncing document %s: %w", doc.name, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return time.Time{}, fmt.Errorf("closing document %s: %w", doc.name, err)
	}
	if err := os.Rename(tempPath, doc.path); err != nil {
		os.Remove(tempPath)
		return time.Time{}, fmt.Errorf("replacing document %s: %w", doc.name, err)
	}

	info, err := os.Stat(doc.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("checking document %s: %w", doc.name, err)
	}
	return info.ModTime(), nil
}

func decodeDocument(data []byte) (map[string][]Record, map[string]json.RawMessage, error) {
	collections := make(map[string][]Record)
	extra := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return collections, extra, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, err
	}

	for key, raw := range top {
		records, err := decodeRecords(raw)
		if err != nil {
			extra[key] = raw
			continue
		}
		collections[key] = records
	}
	return collections, extra, nil
}

func decodeRecords(raw json.RawMessage) ([]Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var records []Record
	if err := decoder.Decode(&records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
