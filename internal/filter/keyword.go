// Package filter selects documents and records: a keyword filter over
// flattened records and a breadcrumb filter over raw documents' taxonomy
// chains. The two modes are used exclusively of each other.
package filter

import (
	"strings"

	"github.com/okessler/jsontab/internal/flatten"
)

// Mode is the keyword match predicate.
type Mode string

const (
	ModeContains Mode = "contains"
	ModeEquals   Mode = "equals"
)

// ParseMode maps a configuration string to a Mode. Unrecognized values
// fall back to contains.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(s)) == ModeEquals {
		return ModeEquals
	}
	return ModeContains
}

// AllColumns targets every column of a record.
const AllColumns = ""

// Keyword matches flattened records against a keyword. An empty keyword
// matches everything.
type Keyword struct {
	Keyword       string
	Column        string // AllColumns to match any column
	Mode          Mode
	CaseSensitive bool
}

// Matches reports whether rec satisfies the filter. With a specific column
// the predicate runs against that column's stringified value; with
// AllColumns any matching value suffices.
func (f Keyword) Matches(rec flatten.Record) bool {
	if f.Keyword == "" {
		return true
	}
	if f.Column != AllColumns {
		return f.matchValue(flatten.CellString(rec[f.Column]))
	}
	for _, v := range rec {
		if f.matchValue(flatten.CellString(v)) {
			return true
		}
	}
	return false
}

func (f Keyword) matchValue(value string) bool {
	keyword := f.Keyword
	if !f.CaseSensitive {
		value = strings.ToLower(value)
		keyword = strings.ToLower(keyword)
	}
	if f.Mode == ModeEquals {
		return value == keyword
	}
	return strings.Contains(value, keyword)
}
