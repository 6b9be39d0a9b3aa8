// Package flatten reduces one JSON document to one flat record: a mapping
// from selected path to a scalar cell value, suitable for tabular export.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/okessler/jsontab/internal/docpath"
)

// Rule is the aggregation policy applied when an array-typed path must
// collapse into a single cell.
type Rule string

const (
	RuleJoin  Rule = "join"
	RuleCount Rule = "count"
	RuleFirst Rule = "first"
	RuleLast  Rule = "last"
	RuleJSON  Rule = "json"
)

// ValidRules lists the recognized configuration values.
var ValidRules = []Rule{RuleJoin, RuleCount, RuleFirst, RuleLast, RuleJSON}

// ParseRule maps a configuration string to a Rule. Unrecognized values
// fall back to join.
func ParseRule(s string) Rule {
	switch Rule(strings.ToLower(s)) {
	case RuleCount:
		return RuleCount
	case RuleFirst:
		return RuleFirst
	case RuleLast:
		return RuleLast
	case RuleJSON:
		return RuleJSON
	default:
		return RuleJoin
	}
}

// DefaultSeparator joins array elements under RuleJoin.
const DefaultSeparator = "; "

// Options configures flattening.
type Options struct {
	Rule      Rule
	Separator string
}

func (o Options) separator() string {
	if o.Separator == "" {
		return DefaultSeparator
	}
	return o.Separator
}

// Record maps a selected path to its derived cell value. Values are only
// ever string or int (the count rule); collaborators may merge extra keys
// in afterwards without touching the selected-path keys.
type Record map[string]any

// Flatten produces one record for doc. Every path degrades independently:
// a path that cannot be resolved yields an empty string, never an error.
func Flatten(doc any, selectedPaths []string, opt Options) Record {
	rec := make(Record, len(selectedPaths))
	for _, p := range selectedPaths {
		rec[p] = flattenPath(doc, p, opt)
	}
	return rec
}

func flattenPath(doc any, path string, opt Options) any {
	resolved, ok := docpath.Resolve(doc, path)

	if !docpath.IsArrayPath(path) {
		if !ok || resolved == nil {
			return ""
		}
		switch v := resolved.(type) {
		case map[string]any, []any:
			return jsonCell(v)
		default:
			return CellString(v)
		}
	}

	if !ok || resolved == nil {
		return ""
	}
	arr, isArr := resolved.([]any)
	if !isArr {
		// defensive: array path resolved to a non-array
		return CellString(resolved)
	}

	flat := docpath.FlattenValues(arr)
	switch opt.Rule {
	case RuleCount:
		return len(flat)
	case RuleFirst:
		if len(flat) == 0 {
			return ""
		}
		return CellString(flat[0])
	case RuleLast:
		if len(flat) == 0 {
			return ""
		}
		return CellString(flat[len(flat)-1])
	case RuleJSON:
		return jsonCell(flat)
	default:
		parts := make([]string, len(flat))
		for i, v := range flat {
			parts[i] = CellString(v)
		}
		return strings.Join(parts, opt.separator())
	}
}

// CellString stringifies a cell value. Numbers render without exponent
// notation so spreadsheet imports stay readable.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]any, []any:
		return jsonCell(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func jsonCell(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
