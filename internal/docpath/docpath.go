// Package docpath implements the dot/bracket path notation used to address
// positions inside decoded JSON documents, and value resolution along such
// paths.
//
// A path is a string of segments joined by ".". A segment referring to an
// array-typed position carries a "[]" suffix, e.g.
// "DailyList[].AttractionsList[].Name". A bare "[]" segment (empty
// identifier) denotes "the current value itself is the array" and only
// appears when the document root is an array. The encoding is stable
// byte-for-byte: selected paths are persisted and compared as strings.
package docpath

import "strings"

// Segment is one parsed path component.
type Segment struct {
	Name  string
	Array bool
}

func (s Segment) String() string {
	if s.Array {
		return s.Name + "[]"
	}
	return s.Name
}

// Parse splits a path into its segments. An empty path yields nil.
func Parse(path string) []Segment {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		if name, ok := strings.CutSuffix(p, "[]"); ok {
			segs = append(segs, Segment{Name: name, Array: true})
		} else {
			segs = append(segs, Segment{Name: p})
		}
	}
	return segs
}

// Join extends base with a child key. At the root (empty base) the key
// stands bare.
func Join(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// MarkArray suffixes a path with the array marker. An empty path (the root)
// becomes the bare "[]" segment.
func MarkArray(path string) string {
	return path + "[]"
}

// IsArrayPath reports whether any segment of path addresses an array.
func IsArrayPath(path string) bool {
	for _, s := range Parse(path) {
		if s.Array {
			return true
		}
	}
	return false
}
