// Package profile summarizes the values observed at each selectable column
// of a document corpus: distinct cardinality, capped example values,
// numeric statistics, and clusters of near-identical string values. The
// output drives field selection; nothing here feeds back into flattening.
package profile

import (
	"sort"

	"github.com/okessler/jsontab/internal/docpath"
	"github.com/okessler/jsontab/internal/flatten"
	"github.com/okessler/jsontab/internal/schema"
)

const maxExamples = 5

// Column is the profile of one leaf path across the corpus.
type Column struct {
	Path        string        `json:"path"`
	Present     int           `json:"present"`
	Cardinality int           `json:"cardinality"`
	Examples    []string      `json:"examples"`
	Numeric     *NumericStats `json:"numeric,omitempty"`
	Groups      []ValueGroup  `json:"groups,omitempty"`
}

// Profile inspects a bounded, evenly-strided sample of docs and returns
// one Column per leaf path of tree, in canonical leaf order.
func Profile(docs []any, tree *schema.Node, maxSample int) []Column {
	if maxSample <= 0 {
		maxSample = schema.DefaultMaxSample
	}
	indices := schema.SampleIndices(len(docs), maxSample)

	columns := make([]Column, 0)
	for _, path := range schema.CollectLeafPaths(tree) {
		columns = append(columns, profilePath(docs, indices, path))
	}
	return columns
}

func profilePath(docs []any, indices []int, path string) Column {
	col := Column{Path: path}

	distinct := make(map[string]struct{})
	var numbers []float64
	var texts []string
	numericOnly := true

	for _, i := range indices {
		values := valuesAt(docs[i], path)
		if len(values) == 0 {
			continue
		}
		col.Present++
		for _, v := range values {
			s := flatten.CellString(v)
			distinct[s] = struct{}{}
			if n, ok := v.(float64); ok {
				numbers = append(numbers, n)
			} else {
				numericOnly = false
				texts = append(texts, s)
			}
		}
	}

	col.Cardinality = len(distinct)
	col.Examples = sortedKeys(distinct, maxExamples)
	if numericOnly && len(numbers) > 0 {
		col.Numeric = numericStats(numbers)
	}
	if len(texts) > 0 {
		col.Groups = GroupValues(texts)
	}
	return col
}

// valuesAt resolves path in doc and returns the defined scalar values at
// that position; array paths contribute every flattened element.
func valuesAt(doc any, path string) []any {
	v, ok := docpath.Resolve(doc, path)
	if !ok || v == nil {
		return nil
	}
	if arr, isArr := v.([]any); isArr {
		return docpath.FlattenValues(arr)
	}
	return []any{v}
}

func sortedKeys(m map[string]struct{}, max int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > max {
		keys = keys[:max]
	}
	return keys
}
