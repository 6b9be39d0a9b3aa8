package filter

import (
	"sort"

	"github.com/okessler/jsontab/internal/docpath"
)

// DefaultSourcePath locates breadcrumb chains inside a document when no
// source path is configured.
const DefaultSourcePath = "queries.getCommBreadcrumb"

// Crumb is one node of a hierarchical classification chain.
type Crumb struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Option is one node in the shared breadcrumb prefix tree offered for
// hierarchical drill-down. Codes are unique per level; names come from the
// first-seen occurrence.
type Option struct {
	Code     string             `json:"code"`
	Name     string             `json:"name"`
	Children map[string]*Option `json:"children,omitempty"`
}

// ChildCodes returns the option's child codes sorted for stable listing.
func (o *Option) ChildCodes() []string {
	codes := make([]string, 0, len(o.Children))
	for c := range o.Children {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Tree is the top-level breadcrumb taxonomy; multiple roots are allowed.
type Tree struct {
	Roots map[string]*Option `json:"roots"`
}

// RootCodes returns the tree's root codes sorted for stable listing.
func (t *Tree) RootCodes() []string {
	codes := make([]string, 0, len(t.Roots))
	for c := range t.Roots {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// BuildTree scans docs and inserts every chain found at sourcePath into a
// shared prefix tree.
func BuildTree(docs []any, sourcePath string) *Tree {
	t := &Tree{Roots: make(map[string]*Option)}
	for _, doc := range docs {
		for _, chain := range Chains(doc, sourcePath) {
			level := t.Roots
			for _, c := range chain {
				opt, ok := level[c.Code]
				if !ok {
					opt = &Option{Code: c.Code, Name: c.Name, Children: make(map[string]*Option)}
					level[c.Code] = opt
				}
				level = opt.Children
			}
		}
	}
	return t
}

// Chains extracts every {code,name} chain found at sourcePath in doc.
//
// The value at the path is first interpreted as a query wrapper: an array
// of objects each holding a nested "data" array of chain nodes, one chain
// per wrapper entry. When no entry has that shape, the generic fallback
// applies: an array of arrays yields one chain per sub-array, and a plain
// array of {code,name} objects yields a single chain.
func Chains(doc any, sourcePath string) [][]Crumb {
	if sourcePath == "" {
		sourcePath = DefaultSourcePath
	}
	v, ok := docpath.Resolve(doc, sourcePath)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}

	var chains [][]Crumb
	wrapped := false
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		data, ok := m["data"].([]any)
		if !ok {
			continue
		}
		wrapped = true
		if c := chainFrom(data); len(c) > 0 {
			chains = append(chains, c)
		}
	}
	if wrapped {
		return chains
	}

	nested := false
	for _, el := range arr {
		sub, ok := el.([]any)
		if !ok {
			continue
		}
		nested = true
		if c := chainFrom(sub); len(c) > 0 {
			chains = append(chains, c)
		}
	}
	if nested {
		return chains
	}

	if c := chainFrom(arr); len(c) > 0 {
		chains = append(chains, c)
	}
	return chains
}

func chainFrom(items []any) []Crumb {
	var chain []Crumb
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		code, _ := m["code"].(string)
		name, _ := m["name"].(string)
		if code == "" && name == "" {
			continue
		}
		chain = append(chain, Crumb{Code: code, Name: name})
	}
	return chain
}

// Breadcrumb matches raw documents against a user-selected chain of codes.
// An empty code at a position is a don't-care; selecting no codes at all
// matches every document.
type Breadcrumb struct {
	SourcePath string
	Codes      []string
}

// Matches reports whether any of the document's chains carries every
// non-empty selected code at the corresponding position. A chain with no
// node at a required position does not match.
func (f Breadcrumb) Matches(doc any) bool {
	selected := false
	for _, c := range f.Codes {
		if c != "" {
			selected = true
			break
		}
	}
	if !selected {
		return true
	}

	for _, chain := range Chains(doc, f.SourcePath) {
		if chainMatches(chain, f.Codes) {
			return true
		}
	}
	return false
}

func chainMatches(chain []Crumb, codes []string) bool {
	for i, code := range codes {
		if code == "" {
			continue
		}
		if i >= len(chain) || chain[i].Code != code {
			return false
		}
	}
	return true
}
