package store_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/store"
)

func newStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	return store.New(dir), dir
}

func writeDocument(t *testing.T, dir, name string, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("touching %s: %v", name, err)
	}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s, _ := newStore(t)

	records, err := s.All(store.Tasks)
	if err != nil {
		t.Fatalf("reading tasks: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected 0 tasks, got %d", len(records))
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s, _ := newStore(t)

	first, err := s.Create(store.Tasks, store.Record{"title": "Write report", "status": "inbox"})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}
	if store.IDString(first.ID()) != "1" {
		t.Errorf("expected id 1, got %v", first.ID())
	}

	second, err := s.Create(store.Tasks, store.Record{"title": "Review"})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}
	if store.IDString(second.ID()) != "2" {
		t.Errorf("expected id 2, got %v", second.ID())
	}

	found, err := s.Get(store.Tasks, "1")
	if err != nil {
		t.Fatalf("finding task: %v", err)
	}
	if found["title"] != "Write report" || found["status"] != "inbox" {
		t.Errorf("unexpected record %v", found)
	}
}

func TestStore_CreateKeepsGivenID(t *testing.T) {
	s, _ := newStore(t)

	created, err := s.Create(store.Projects, store.Record{"id": "p1", "title": "Launch"})
	if err != nil {
		t.Fatalf("creating project: %v", err)
	}
	if created["id"] != "p1" {
		t.Errorf("expected id p1, got %v", created["id"])
	}
}

func TestStore_NextIDIgnoresNonIntegerIDs(t *testing.T) {
	s, dir := newStore(t)
	writeDocument(t, dir, "tasks.json", `{"tasks": [{"id": "abc"}, {"id": 3}, {"id": "10"}]}`)

	created, err := s.Create(store.Tasks, store.Record{"title": "Next"})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}
	if store.IDString(created.ID()) != "4" {
		t.Errorf("expected id 4, got %v", created.ID())
	}
}

func TestStore_UpdatePreservesOtherFields(t *testing.T) {
	s, _ := newStore(t)
	created, _ := s.Create(store.Tasks, store.Record{"title": "Draft", "status": "inbox", "priority": true})

	updated, err := s.Update(store.Tasks, created.ID(), store.Record{"status": "clarified"})
	if err != nil {
		t.Fatalf("updating task: %v", err)
	}
	if updated["status"] != "clarified" {
		t.Errorf("expected status clarified, got %v", updated["status"])
	}
	if updated["title"] != "Draft" || updated["priority"] != true {
		t.Errorf("expected untouched fields to survive, got %v", updated)
	}

	found, _ := s.Get(store.Tasks, created.ID())
	if found["title"] != "Draft" || found["status"] != "clarified" {
		t.Errorf("expected persisted merge, got %v", found)
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Update(store.Tasks, 42, store.Record{"status": "trash"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteMissingLeavesCollection(t *testing.T) {
	s, _ := newStore(t)
	s.Create(store.Tasks, store.Record{"title": "Keep"})

	deleted, err := s.Delete(store.Tasks, 99)
	if err != nil {
		t.Fatalf("deleting task: %v", err)
	}
	if deleted {
		t.Error("expected delete of unknown id to report false")
	}

	records, _ := s.All(store.Tasks)
	if len(records) != 1 {
		t.Errorf("expected 1 task, got %d", len(records))
	}
}

func TestStore_Delete(t *testing.T) {
	s, _ := newStore(t)
	first, _ := s.Create(store.Tasks, store.Record{"title": "One"})
	s.Create(store.Tasks, store.Record{"title": "Two"})

	deleted, err := s.Delete(store.Tasks, store.IDString(first.ID()))
	if err != nil {
		t.Fatalf("deleting task: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report true")
	}

	records, _ := s.All(store.Tasks)
	if len(records) != 1 || records[0]["title"] != "Two" {
		t.Errorf("expected only task Two to remain, got %v", records)
	}
}

func TestStore_SharedDocumentKeepsBothCollections(t *testing.T) {
	s, dir := newStore(t)

	s.Create(store.Users, store.Record{"name": "Alex"})
	s.Create(store.AuthCredentials, store.Record{"username": "alex", "password": "pw", "user_id": 1})

	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatalf("reading users document: %v", err)
	}
	var document map[string][]map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("decoding users document: %v", err)
	}
	if len(document["users"]) != 1 || len(document["authCredentials"]) != 1 {
		t.Errorf("expected both collections in users.json, got %s", data)
	}
}

func TestStore_PreservesUnknownKeys(t *testing.T) {
	s, dir := newStore(t)
	writeDocument(t, dir, "report.json", `{"reports": [], "meta": {"version": 2}}`)

	if _, err := s.Create(store.Reports, store.Record{"type": "daily"}); err != nil {
		t.Fatalf("creating report: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "report.json"))
	if !strings.Contains(string(data), `"version": 2`) {
		t.Errorf("expected meta key to be preserved, got %s", data)
	}
}

func TestStore_ReloadsExternalEdits(t *testing.T) {
	s, dir := newStore(t)
	s.Create(store.ShopItems, store.Record{"id": "potion", "cost": 10})

	writeDocument(t, dir, "items.json", `{"shopItems": [{"id": "sword", "cost": 100}, {"id": "shield", "cost": 80}]}`)

	records, err := s.All(store.ShopItems)
	if err != nil {
		t.Fatalf("reading items: %v", err)
	}
	if len(records) != 2 || records[0]["id"] != "sword" {
		t.Errorf("expected externally written items, got %v", records)
	}
}

func TestStore_ReloadHook(t *testing.T) {
	dir := t.TempDir()
	var reloaded []string
	s := store.New(dir, store.WithReloadHook(func(document string) {
		reloaded = append(reloaded, document)
	}))
	writeDocument(t, dir, "teams.json", `{"teams": [{"id": 1, "name": "Core"}]}`)

	s.All(store.Teams)
	s.All(store.Teams)

	if len(reloaded) != 1 || reloaded[0] != "teams.json" {
		t.Errorf("expected one reload of teams.json, got %v", reloaded)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s, _ := newStore(t)
	created, _ := s.Create(store.Tasks, store.Record{"title": "Original"})

	records, _ := s.All(store.Tasks)
	records[0]["title"] = "Changed"

	found, _ := s.Get(store.Tasks, created.ID())
	if found["title"] != "Original" {
		t.Errorf("expected cache to be unaffected, got %v", found["title"])
	}
}

func TestStore_ReturnsDeepCopies(t *testing.T) {
	s, dir := newStore(t)
	writeDocument(t, dir, "users.json", `{"users":[{"id":1,"inventory":["i1"],"stats":{"focus":3},"subtasks":[{"id":1,"done":false}]}]}`)

	records, err := s.All(store.Users)
	if err != nil {
		t.Fatalf("reading users: %v", err)
	}
	records[0]["inventory"].([]any)[0] = "stolen"
	records[0]["stats"].(map[string]any)["focus"] = 99
	records[0]["subtasks"].([]any)[0].(map[string]any)["done"] = true

	found, err := s.Get(store.Users, 1)
	if err != nil {
		t.Fatalf("getting user: %v", err)
	}
	if got := found["inventory"].([]any)[0]; got != "i1" {
		t.Errorf("expected inventory to be unaffected, got %v", got)
	}
	if got := found["stats"].(map[string]any)["focus"]; got != json.Number("3") {
		t.Errorf("expected stats to be unaffected, got %v", got)
	}
	if got := found["subtasks"].([]any)[0].(map[string]any)["done"]; got != false {
		t.Errorf("expected subtasks to be unaffected, got %v", got)
	}
}

func TestStore_UnknownCollection(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.All(store.Collection("widgets"))
	if !errors.Is(err, store.ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestStore_LeavesNoTempFiles(t *testing.T) {
	s, dir := newStore(t)
	for i := 0; i < 5; i++ {
		s.Create(store.Tasks, store.Record{"title": fmt.Sprintf("Task %d", i)})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading data dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("unexpected temp file %s", entry.Name())
		}
	}
}

func TestStore_ConcurrentUpdatesKeepAllFields(t *testing.T) {
	s, _ := newStore(t)
	created, _ := s.Create(store.Users, store.Record{"name": "Sam"})

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			field := fmt.Sprintf("field%d", n)
			if _, err := s.Update(store.Users, created.ID(), store.Record{field: n}); err != nil {
				t.Errorf("updating %s: %v", field, err)
			}
		}(i)
	}
	wg.Wait()

	found, err := s.Get(store.Users, created.ID())
	if err != nil {
		t.Fatalf("finding user: %v", err)
	}
	for i := 0; i < writers; i++ {
		if _, ok := found[fmt.Sprintf("field%d", i)]; !ok {
			t.Errorf("lost update for field%d", i)
		}
	}
}

func TestStore_MutateError(t *testing.T) {
	s, _ := newStore(t)
	created, _ := s.Create(store.Users, store.Record{"gold": 5})
	refused := errors.New("refused")

	_, err := s.Mutate(store.Users, created.ID(), func(record store.Record) (store.Record, error) {
		record["gold"] = 0
		return nil, refused
	})
	if !errors.Is(err, refused) {
		t.Fatalf("expected refused error, got %v", err)
	}

	found, _ := s.Get(store.Users, created.ID())
	if store.IDString(found["gold"]) != "5" {
		t.Errorf("expected gold to stay 5, got %v", found["gold"])
	}
}

func TestStore_InsertSeesExistingRecords(t *testing.T) {
	s, _ := newStore(t)
	s.Create(store.Projects, store.Record{"id": "p1"})
	s.Create(store.Projects, store.Record{"id": "p2"})

	created, err := s.Insert(store.Projects, func(existing []store.Record) (store.Record, error) {
		return store.Record{"id": fmt.Sprintf("p%d", len(existing)+1)}, nil
	})
	if err != nil {
		t.Fatalf("inserting: %v", err)
	}
	if created["id"] != "p3" {
		t.Errorf("expected id p3, got %v", created["id"])
	}
}

func TestStore_InsertErrorWritesNothing(t *testing.T) {
	s, _ := newStore(t)
	failure := errors.New("rejected")

	_, err := s.Insert(store.Projects, func(existing []store.Record) (store.Record, error) {
		return nil, failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected insert error, got %v", err)
	}
	records, _ := s.All(store.Projects)
	if len(records) != 0 {
		t.Errorf("expected no projects, got %d", len(records))
	}
}
