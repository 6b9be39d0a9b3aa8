package schema

import (
	"sort"

	"github.com/okessler/jsontab/internal/docpath"
)

// maxDepth bounds inference recursion; anything nested deeper is recorded
// as a scalar leaf instead of recursed into.
const maxDepth = 64

// DefaultMaxSample caps how many documents Discover inspects.
const DefaultMaxSample = 200

// Infer builds a schema tree from one decoded document. Array elements are
// each inferred independently and their candidate subtrees structurally
// merged, so a field present in any element is preserved even when other
// elements have it missing or empty.
func Infer(doc any) *Node {
	return inferValue(RootName, "", doc, 0)
}

func inferValue(name, path string, v any, depth int) *Node {
	if depth >= maxDepth {
		return &Node{Name: name, Path: path, Type: TypeScalar}
	}
	switch val := v.(type) {
	case map[string]any:
		n := &Node{Name: name, Path: path, Type: TypeObject}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.addChild(inferChild(k, path, val[k], depth+1))
		}
		return n
	case []any:
		apath := docpath.MarkArray(path)
		n := &Node{Name: name, Path: apath, Type: TypeArray}
		inferElements(n, name, apath, val, depth+1)
		return n
	default:
		return &Node{Name: name, Path: path, Type: TypeScalar}
	}
}

func inferChild(key, parentPath string, v any, depth int) *Node {
	return inferValue(key, docpath.Join(parentPath, key), v, depth)
}

// inferElements merges every element's candidate subtree into the array
// node. Nested arrays contribute their own elements directly, matching the
// resolver's flat traversal of doubly-nested data.
func inferElements(n *Node, name, apath string, elems []any, depth int) {
	if depth >= maxDepth {
		return
	}
	var conflicts []TypeConflict
	for _, el := range elems {
		if sub, ok := el.([]any); ok {
			inferElements(n, name, apath, sub, depth+1)
			continue
		}
		candidate := inferValue(name, apath, el, depth)
		for _, childName := range candidate.order {
			existing := n.child(childName)
			incoming := candidate.Children[childName]
			if existing == nil {
				n.addChild(incoming)
			} else {
				n.addChild(mergeNodes(existing, incoming, &conflicts))
			}
		}
	}
}

// Merge unions two schema trees rooted at the same conceptual path.
// Children present on one side only are carried over; children present on
// both recurse. When the sides disagree on a node's type the structured
// side wins and a TypeConflict is recorded. Neither input is modified.
func Merge(a, b *Node) (*Node, []TypeConflict) {
	var conflicts []TypeConflict
	merged := mergeNodes(a, b, &conflicts)
	return merged, conflicts
}

func mergeNodes(a, b *Node, conflicts *[]TypeConflict) *Node {
	if a == nil {
		return b.clone()
	}
	if b == nil {
		return a.clone()
	}

	base, other := a, b
	if b.Type.rank() > a.Type.rank() {
		base, other = b, a
	}
	if base.Type != other.Type {
		*conflicts = append(*conflicts, TypeConflict{
			Path:    base.Path,
			Kept:    base.Type,
			Dropped: other.Type,
		})
	}

	merged := &Node{Name: base.Name, Path: base.Path, Type: base.Type}
	for _, name := range base.order {
		merged.addChild(mergeNodes(base.Children[name], other.child(name), conflicts))
	}
	for _, name := range other.order {
		if merged.child(name) == nil {
			merged.addChild(other.Children[name].clone())
		}
	}
	return merged
}

// Discover infers a combined tree from a bounded, evenly-strided sample of
// docs. Taking the first N would bias the tree whenever document ordering
// correlates with document sub-type, so indices are spread across the
// whole set.
func Discover(docs []any, maxSample int) (*Node, []TypeConflict) {
	if maxSample <= 0 {
		maxSample = DefaultMaxSample
	}
	var tree *Node
	var conflicts []TypeConflict
	for _, i := range SampleIndices(len(docs), maxSample) {
		inferred := Infer(docs[i])
		if tree == nil {
			tree = inferred
			continue
		}
		var cs []TypeConflict
		tree = mergeNodes(tree, inferred, &cs)
		conflicts = append(conflicts, cs...)
	}
	if tree == nil {
		tree = &Node{Name: RootName, Path: "", Type: TypeObject}
	}
	return tree, conflicts
}

// SampleIndices returns up to max indices evenly distributed across n
// items, in ascending order. When n <= max every index is returned.
func SampleIndices(n, max int) []int {
	if n <= 0 {
		return nil
	}
	if max <= 0 || n <= max {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, max)
	for i := range idx {
		idx[i] = i * n / max
	}
	return idx
}
