package schema

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/okessler/jsontab/internal/docpath"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	return v
}

func leafSet(root *Node) map[string]bool {
	set := make(map[string]bool)
	for _, p := range CollectLeafPaths(root) {
		set[p] = true
	}
	return set
}

func TestInfer_ScalarRoot(t *testing.T) {
	n := Infer("hello")
	if n.Type != TypeScalar {
		t.Errorf("scalar root type: got %s, want scalar", n.Type)
	}
	if n.Name != RootName || n.Path != "" {
		t.Errorf("scalar root: got name=%q path=%q", n.Name, n.Path)
	}
}

func TestInfer_ObjectFields(t *testing.T) {
	doc := mustDecode(t, `{"TourID":"T1","Price":99.5,"Meta":{"Region":"EU"}}`)
	n := Infer(doc)
	if n.Type != TypeObject {
		t.Fatalf("root type: got %s, want object", n.Type)
	}
	leaves := leafSet(n)
	for _, want := range []string{"TourID", "Price", "Meta.Region"} {
		if !leaves[want] {
			t.Errorf("leaf paths missing %q, got %v", want, CollectLeafPaths(n))
		}
	}
}

func TestInfer_ArrayOfObjects(t *testing.T) {
	doc := mustDecode(t, `{"DailyList":[{"Day":1},{"Day":2}]}`)
	n := Infer(doc)
	dl := n.child("DailyList")
	if dl == nil || dl.Type != TypeArray {
		t.Fatalf("DailyList node: got %+v, want array node", dl)
	}
	if dl.Path != "DailyList[]" {
		t.Errorf("DailyList path: got %q, want %q", dl.Path, "DailyList[]")
	}
	day := dl.child("Day")
	if day == nil || day.Path != "DailyList[].Day" {
		t.Errorf("Day child: got %+v, want path DailyList[].Day", day)
	}
}

func TestInfer_ArrayOfScalarsIsLeaf(t *testing.T) {
	doc := mustDecode(t, `{"Tags":["x","y"]}`)
	n := Infer(doc)
	leaves := leafSet(n)
	if !leaves["Tags[]"] {
		t.Errorf("Tags[] should be a selectable leaf, got %v", CollectLeafPaths(n))
	}
}

func TestInfer_RootArray(t *testing.T) {
	doc := mustDecode(t, `[{"Name":"a"},{"Name":"b"}]`)
	n := Infer(doc)
	if n.Type != TypeArray || n.Path != "[]" {
		t.Fatalf("root array: got type=%s path=%q", n.Type, n.Path)
	}
	name := n.child("Name")
	if name == nil || name.Path != "[].Name" {
		t.Errorf("root array child: got %+v, want path [].Name", name)
	}
}

func TestInfer_SparseArrayElementsKeepAllFields(t *testing.T) {
	doc := mustDecode(t, `{"Items":[{"a":1,"b":2},{"a":3}]}`)
	n := Infer(doc)
	leaves := leafSet(n)
	if !leaves["Items[].a"] || !leaves["Items[].b"] {
		t.Errorf("sparse elements: got %v, want both Items[].a and Items[].b", CollectLeafPaths(n))
	}
}

func TestInfer_EmptySubObjectDoesNotEraseSiblingStructure(t *testing.T) {
	// Discriminates the per-element structural merge from the legacy
	// composite-value merge: element 2's empty nested object must not
	// drop nested.x discovered in element 1.
	doc := mustDecode(t, `{"Items":[{"a":1,"nested":{"x":1}},{"a":2,"nested":{}}]}`)
	n := Infer(doc)
	leaves := leafSet(n)
	if !leaves["Items[].nested.x"] {
		t.Errorf("empty follow-up object erased nested.x: got %v", CollectLeafPaths(n))
	}
}

func TestInfer_NestedArrays(t *testing.T) {
	doc := mustDecode(t, `{"Grid":[[{"V":1}],[{"V":2},{"W":3}]]}`)
	n := Infer(doc)
	leaves := leafSet(n)
	if !leaves["Grid[].V"] || !leaves["Grid[].W"] {
		t.Errorf("nested arrays: got %v, want Grid[].V and Grid[].W", CollectLeafPaths(n))
	}
}

func TestInfer_DepthBounded(t *testing.T) {
	raw := `1`
	for i := 0; i < 200; i++ {
		raw = `{"n":` + raw + `}`
	}
	n := Infer(mustDecode(t, raw))
	if n == nil {
		t.Fatal("deep document should still infer")
	}
	// Must terminate; nodes past the cap degrade to scalar leaves.
	if len(CollectLeafPaths(n)) == 0 {
		t.Error("deep document should yield at least one leaf")
	}
}

func TestMerge_UnionsFields(t *testing.T) {
	a := Infer(mustDecode(t, `{"a":1,"shared":{"x":1}}`))
	b := Infer(mustDecode(t, `{"b":2,"shared":{"y":2}}`))
	m, conflicts := Merge(a, b)
	if len(conflicts) != 0 {
		t.Errorf("merge conflicts: got %v, want none", conflicts)
	}
	leaves := leafSet(m)
	for _, want := range []string{"a", "b", "shared.x", "shared.y"} {
		if !leaves[want] {
			t.Errorf("merged leaves missing %q, got %v", want, CollectLeafPaths(m))
		}
	}
}

func TestMerge_OrderInsensitiveFieldSet(t *testing.T) {
	docA := mustDecode(t, `{"a":1}`)
	docB := mustDecode(t, `{"b":{"x":2}}`)
	docC := mustDecode(t, `{"c":[{"y":3}]}`)

	ab, _ := Merge(Infer(docA), Infer(docB))
	abc, _ := Merge(ab, Infer(docC))

	cb, _ := Merge(Infer(docC), Infer(docB))
	cba, _ := Merge(cb, Infer(docA))

	if !reflect.DeepEqual(leafSet(abc), leafSet(cba)) {
		t.Errorf("merge order changed field set:\nabc=%v\ncba=%v",
			CollectLeafPaths(abc), CollectLeafPaths(cba))
	}
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	a := Infer(mustDecode(t, `{"a":1}`))
	b := Infer(mustDecode(t, `{"b":2}`))
	before := CollectLeafPaths(a)
	_, _ = Merge(a, b)
	after := CollectLeafPaths(a)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Merge mutated input: before=%v after=%v", before, after)
	}
}

func TestMerge_TypeConflictPrefersStructure(t *testing.T) {
	a := Infer(mustDecode(t, `{"f":"scalar"}`))
	b := Infer(mustDecode(t, `{"f":{"inner":1}}`))

	m, conflicts := Merge(a, b)
	f := m.child("f")
	if f == nil || f.Type != TypeObject {
		t.Fatalf("conflicted node: got %+v, want object kept", f)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts: got %d, want 1", len(conflicts))
	}
	if conflicts[0].Kept != TypeObject || conflicts[0].Dropped != TypeScalar {
		t.Errorf("conflict record: got %+v", conflicts[0])
	}

	// Same outcome regardless of argument order.
	m2, _ := Merge(b, a)
	if f2 := m2.child("f"); f2 == nil || f2.Type != TypeObject {
		t.Errorf("reversed merge: got %+v, want object kept", f2)
	}
}

func TestCollectLeafPaths_PreOrder(t *testing.T) {
	doc := mustDecode(t, `{"a":{"x":1,"y":2},"b":3}`)
	got := CollectLeafPaths(Infer(doc))
	want := []string{"a.x", "a.y", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("leaf order: got %v, want %v", got, want)
	}
}

func TestCollectLeafPaths_RoundTripResolvable(t *testing.T) {
	doc := mustDecode(t, `{
		"TourID":"T1",
		"Price":99.5,
		"Tags":["x","y"],
		"DailyList":[
			{"Day":1,"AttractionsList":[{"Name":"A"}]},
			{"Day":2,"AttractionsList":[{"Name":"B"},{"Name":"C"}]}
		]
	}`)
	tree := Infer(doc)
	for _, p := range CollectLeafPaths(tree) {
		v, ok := docpath.Resolve(doc, p)
		if !ok {
			t.Errorf("leaf path %q did not resolve", p)
			continue
		}
		values := []any{v}
		if arr, isArr := v.([]any); isArr {
			values = docpath.FlattenValues(arr)
		}
		for _, el := range values {
			if _, isObj := el.(map[string]any); isObj {
				t.Errorf("leaf path %q resolved to an object: %v", p, el)
			}
		}
	}
}

func TestSortPaths_CanonicalOrderAndValidity(t *testing.T) {
	tree := Infer(mustDecode(t, `{"a":1,"b":{"x":2},"c":3}`))
	got := SortPaths([]string{"c", "b.x", "ghost", "a", "c"}, tree)
	want := []string{"a", "b.x", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortPaths: got %v, want %v", got, want)
	}
}

func TestDiscover_MergesAcrossDocuments(t *testing.T) {
	docs := []any{
		mustDecode(t, `{"a":1}`),
		mustDecode(t, `{"b":2}`),
		mustDecode(t, `{"a":"s","c":{"d":3}}`),
	}
	tree, conflicts := Discover(docs, 0)
	if len(conflicts) != 0 {
		t.Errorf("conflicts: got %v, want none", conflicts)
	}
	leaves := leafSet(tree)
	for _, want := range []string{"a", "b", "c.d"} {
		if !leaves[want] {
			t.Errorf("discovered leaves missing %q, got %v", want, CollectLeafPaths(tree))
		}
	}
}

func TestDiscover_Empty(t *testing.T) {
	tree, conflicts := Discover(nil, 0)
	if tree == nil || tree.Type != TypeObject {
		t.Fatalf("empty corpus: got %+v, want empty object root", tree)
	}
	if len(conflicts) != 0 || len(CollectLeafPaths(tree)) != 0 {
		t.Error("empty corpus should yield no leaves and no conflicts")
	}
}

func TestDiscover_ReportsConflicts(t *testing.T) {
	docs := []any{
		mustDecode(t, `{"f":1}`),
		mustDecode(t, `{"f":{"g":2}}`),
	}
	_, conflicts := Discover(docs, 0)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts: got %d, want 1", len(conflicts))
	}
}

func TestSampleIndices_SmallCorpus(t *testing.T) {
	got := SampleIndices(3, 10)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SampleIndices small: got %v, want %v", got, want)
	}
}

func TestSampleIndices_Strided(t *testing.T) {
	got := SampleIndices(1000, 4)
	want := []int{0, 250, 500, 750}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SampleIndices strided: got %v, want %v", got, want)
	}
}

func TestSampleIndices_NeverJustFirstN(t *testing.T) {
	idx := SampleIndices(500, 10)
	if len(idx) != 10 {
		t.Fatalf("SampleIndices count: got %d, want 10", len(idx))
	}
	if idx[len(idx)-1] < 250 {
		t.Errorf("SampleIndices should reach into the tail, last index %d", idx[len(idx)-1])
	}
}

func TestCache_RecomputesWhenSetChanges(t *testing.T) {
	c := NewCache(0)

	docs := []any{mustDecode(t, `{"a":1}`)}
	tree, _ := c.Get(docs)
	if !leafSet(tree)["a"] {
		t.Fatal("cache should discover a")
	}

	grown := append(docs, mustDecode(t, `{"b":2}`))
	tree, _ = c.Get(grown)
	if !leafSet(tree)["b"] {
		t.Error("cache should rediscover after the document set changed")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(0)
	c.Get([]any{mustDecode(t, `{"a":1}`)})
	if c.Current() == nil {
		t.Fatal("current should not be nil after Get")
	}
	c.Invalidate()
	if c.Current() != nil {
		t.Error("current should be nil after Invalidate")
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(0)
	docs := []any{mustDecode(t, `{"a":1}`), mustDecode(t, `{"b":2}`)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Get(docs)
		}()
	}
	wg.Wait()

	if c.Current() == nil {
		t.Error("cache should hold a tree after concurrent access")
	}
}
