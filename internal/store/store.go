package store

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
)

type Collection string

const (
	Users               Collection = "users"
	AuthCredentials     Collection = "authCredentials"
	Tasks               Collection = "tasks"
	CalendarEvents      Collection = "calendarEvents"
	Projects            Collection = "projects"
	ShopItems           Collection = "shopItems"
	Achievements        Collection = "achievements"
	Teams               Collection = "teams"
	Contexts            Collection = "contexts"
	ScheduledCategories Collection = "scheduledCategories"
	Reports             Collection = "reports"
)

// Layout maps every collection to the JSON document that holds it. Collections
// sharing a file are stored under their own top-level key of that document.
var Layout = map[Collection]string{
	Users:               "users.json",
	AuthCredentials:     "users.json",
	Tasks:               "tasks.json",
	CalendarEvents:      "tasks.json",
	Projects:            "projects.json",
	ShopItems:           "items.json",
	Achievements:        "achievements.json",
	Teams:               "teams.json",
	Contexts:            "contexts.json",
	ScheduledCategories: "contexts.json",
	Reports:             "report.json",
}

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

type Option func(*Store)

// WithReloadHook registers a callback invoked with the document file name
// every time a document is (re)read from disk.
func WithReloadHook(hook func(document string)) Option {
	return func(store *Store) {
		store.onReload = hook
	}
}

type Store struct {
	dataDir   string
	documents map[string]*document
	onReload  func(document string)
}

func New(dataDir string, options ...Option) *Store {
	store := &Store{
		dataDir:   dataDir,
		documents: make(map[string]*document),
	}
	for _, option := range options {
		option(store)
	}
	for _, filename := range Layout {
		if _, ok := store.documents[filename]; ok {
			continue
		}
		store.documents[filename] = &document{
			name:     filename,
			path:     filepath.Join(dataDir, filename),
			onReload: store.onReload,
		}
	}
	return store
}

func (store *Store) DataDir() string {
	return store.dataDir
}

// Documents returns the distinct document file names in a stable order.
func (store *Store) Documents() []string {
	names := make([]string, 0, len(store.documents))
	for name := range store.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (store *Store) resolve(collection Collection) (*document, error) {
	filename, ok := Layout[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return store.documents[filename], nil
}

// All returns deep copies of every record of the collection as currently on
// disk.
func (store *Store) All(collection Collection) ([]Record, error) {
	doc, err := store.resolve(collection)
	if err != nil {
		return nil, err
	}
	return doc.snapshot(string(collection))
}

func (store *Store) Filter(collection Collection, keep func(Record) bool) ([]Record, error) {
	records, err := store.All(collection)
	if err != nil {
		return nil, err
	}
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if keep(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

func (store *Store) Get(collection Collection, id any) (Record, error) {
	records, err := store.All(collection)
	if err != nil {
		return nil, err
	}
	if index := indexOf(records, id); index >= 0 {
		return records[index], nil
	}
	return nil, fmt.Errorf("%s %v: %w", collection, id, ErrNotFound)
}

// Create appends record to the collection. A record without an id gets the
// highest integer id in the collection plus one; non-integer ids count as 0.
func (store *Store) Create(collection Collection, record Record) (Record, error) {
	return store.Insert(collection, func(existing []Record) (Record, error) {
		created := record.Clone()
		if !created.HasID() {
			created["id"] = nextID(existing)
		}
		return created, nil
	})
}

// Insert appends the record returned by build, which sees the current records
// of the collection under the document lock. It lets callers derive ids from
// existing records without racing other writers.
func (store *Store) Insert(collection Collection, build func(existing []Record) (Record, error)) (Record, error) {
	doc, err := store.resolve(collection)
	if err != nil {
		return nil, err
	}
	key := string(collection)

	var created Record
	err = doc.modify(func(collections map[string][]Record) error {
		records := collections[key]
		record, err := build(cloneRecords(records))
		if err != nil {
			return err
		}
		created = record
		collections[key] = append(records, created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s record: %w", collection, err)
	}
	slog.Debug("created record", "collection", collection, "id", created["id"])
	return created.Clone(), nil
}

// Update shallow-merges fields over the matching record; fields win.
func (store *Store) Update(collection Collection, id any, fields Record) (Record, error) {
	return store.Mutate(collection, id, func(existing Record) (Record, error) {
		for key, value := range fields {
			existing[key] = value
		}
		return existing, nil
	})
}

// Mutate replaces the matching record with the result of change. The whole
// read-modify-write runs under the document lock, so concurrent mutations of
// the same document are applied one after another.
func (store *Store) Mutate(collection Collection, id any, change func(Record) (Record, error)) (Record, error) {
	doc, err := store.resolve(collection)
	if err != nil {
		return nil, err
	}
	key := string(collection)

	var updated Record
	err = doc.modify(func(collections map[string][]Record) error {
		records := collections[key]
		index := indexOf(records, id)
		if index < 0 {
			return fmt.Errorf("%s %v: %w", collection, id, ErrNotFound)
		}
		next, err := change(records[index].Clone())
		if err != nil {
			return err
		}
		records[index] = next
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete removes the first matching record and reports whether one existed.
func (store *Store) Delete(collection Collection, id any) (bool, error) {
	doc, err := store.resolve(collection)
	if err != nil {
		return false, err
	}
	key := string(collection)

	err = doc.modify(func(collections map[string][]Record) error {
		records := collections[key]
		index := indexOf(records, id)
		if index < 0 {
			return errNoChange
		}
		collections[key] = append(records[:index:index], records[index+1:]...)
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting %s record: %w", collection, err)
	}
	return true, nil
}
