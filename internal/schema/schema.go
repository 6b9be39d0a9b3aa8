// Package schema infers a unified structural schema tree from batches of
// heterogeneous JSON documents. Nodes are addressed by the docpath string
// notation; trees from separate documents merge structurally so that a
// field observed in any document survives in the combined tree.
package schema

// NodeType classifies the value observed at a path.
type NodeType string

const (
	TypeScalar NodeType = "scalar"
	TypeArray  NodeType = "array"
	TypeObject NodeType = "object"
)

// RootName is the sentinel name of the top node; it never appears in a
// path.
const RootName = "root"

// rank orders types for conflict resolution: the more structured
// observation wins a merge.
func (t NodeType) rank() int {
	switch t {
	case TypeObject:
		return 2
	case TypeArray:
		return 1
	default:
		return 0
	}
}

// Node is one structural position across a corpus of documents. Path is
// unique within a tree and stable across merges.
type Node struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Type     NodeType         `json:"type"`
	Children map[string]*Node `json:"children,omitempty"`

	// order holds child names in first-seen order; pre-order traversal
	// over it is the canonical ordering for persisted selections.
	order []string
}

// TypeConflict records that two documents disagreed on the type at a path.
// The structured side was kept; this is a diagnostic, not a failure.
type TypeConflict struct {
	Path    string   `json:"path"`
	Kept    NodeType `json:"kept"`
	Dropped NodeType `json:"dropped"`
}

func (n *Node) child(name string) *Node {
	if n.Children == nil {
		return nil
	}
	return n.Children[name]
}

func (n *Node) addChild(c *Node) {
	if n.Children == nil {
		n.Children = make(map[string]*Node)
	}
	if _, seen := n.Children[c.Name]; !seen {
		n.order = append(n.order, c.Name)
	}
	n.Children[c.Name] = c
}

// ChildNames returns the node's children in canonical (first-seen) order.
func (n *Node) ChildNames() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

func (n *Node) clone() *Node {
	c := &Node{Name: n.Name, Path: n.Path, Type: n.Type}
	for _, name := range n.order {
		c.addChild(n.Children[name].clone())
	}
	return c
}

// CollectLeafPaths yields, in pre-order, the path of every selectable leaf:
// scalar nodes plus arrays with no observed sub-structure (arrays of
// scalars). The returned order is the canonical sort order for selections.
func CollectLeafPaths(root *Node) []string {
	var paths []string
	walkPreOrder(root, func(n *Node) {
		if n.Path == "" {
			return
		}
		if n.Type == TypeScalar || (n.Type == TypeArray && len(n.Children) == 0) {
			paths = append(paths, n.Path)
		}
	})
	return paths
}

// SortPaths re-sorts an arbitrarily-ordered set of paths into canonical
// schema-tree pre-order. Paths not present in the tree are dropped, as are
// duplicates.
func SortPaths(paths []string, root *Node) []string {
	index := make(map[string]int)
	pos := 0
	walkPreOrder(root, func(n *Node) {
		if n.Path == "" {
			return
		}
		index[n.Path] = pos
		pos++
	})

	seen := make(map[string]bool)
	valid := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := index[p]; ok && !seen[p] {
			valid = append(valid, p)
			seen[p] = true
		}
	}
	sortByIndex(valid, index)
	return valid
}

func sortByIndex(paths []string, index map[string]int) {
	// insertion sort; selections are small
	for i := 1; i < len(paths); i++ {
		for j := i; j > 0 && index[paths[j]] < index[paths[j-1]]; j-- {
			paths[j], paths[j-1] = paths[j-1], paths[j]
		}
	}
}

// walkPreOrder visits root then each subtree in canonical child order,
// using an explicit stack so pathological nesting cannot exhaust the call
// stack.
func walkPreOrder(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		for i := len(n.order) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[n.order[i]])
		}
	}
}
