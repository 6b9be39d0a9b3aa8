package store

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/okessler/jsontab/internal/schema"
)

type memKV map[string]string

func (m memKV) Load(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Save(key, value string) error {
	m[key] = value
	return nil
}

func testTree(t *testing.T) *schema.Node {
	t.Helper()
	var doc any
	raw := `{"a":1,"b":{"x":2},"c":3}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatal(err)
	}
	return schema.Infer(doc)
}

func TestSelection_RoundTrip(t *testing.T) {
	kv := memKV{}
	tree := testTree(t)

	if err := SaveSelection(kv, SelectionKey, []string{"c", "a"}); err != nil {
		t.Fatalf("SaveSelection: %v", err)
	}
	got, err := LoadSelection(kv, SelectionKey, tree)
	if err != nil {
		t.Fatalf("LoadSelection: %v", err)
	}
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selection round-trip: got %v, want canonical %v", got, want)
	}
}

func TestLoadSelection_DropsStalePaths(t *testing.T) {
	kv := memKV{}
	if err := SaveSelection(kv, SelectionKey, []string{"a", "removed.field", "b.x"}); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSelection(kv, SelectionKey, testTree(t))
	if err != nil {
		t.Fatalf("LoadSelection: %v", err)
	}
	want := []string{"a", "b.x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stale paths: got %v, want %v", got, want)
	}
}

func TestLoadSelection_MissingKey(t *testing.T) {
	got, err := LoadSelection(memKV{}, SelectionKey, testTree(t))
	if err != nil || got != nil {
		t.Errorf("missing key: got %v err=%v, want empty selection", got, err)
	}
}

func TestLoadSelection_CorruptValue(t *testing.T) {
	kv := memKV{SelectionKey: "{not json"}
	if _, err := LoadSelection(kv, SelectionKey, testTree(t)); err == nil {
		t.Error("corrupt selection should error")
	}
}

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	kv := NewFileKV(path)
	if err := kv.Save("k", "v"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened := NewFileKV(path)
	v, ok, err := reopened.Load("k")
	if err != nil || !ok || v != "v" {
		t.Errorf("reopened load: got %q ok=%v err=%v", v, ok, err)
	}
}

func TestFileKV_MissingFileIsEmpty(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "absent.json"))
	_, ok, err := kv.Load("k")
	if err != nil || ok {
		t.Errorf("missing file: got ok=%v err=%v, want empty store", ok, err)
	}
}
