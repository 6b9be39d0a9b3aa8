package docpath

// maxNesting bounds descent through nested arrays so that adversarial
// inputs cannot grow the stack without limit.
const maxNesting = 64

// Resolve walks path against doc and returns the value at that position.
// The boolean is false when any segment fails to resolve: a missing key, a
// non-object where a key is expected, or a non-array where an array segment
// is expected. Resolution never panics.
//
// An array segment that ends the path returns the array itself. An array
// segment in the middle of the path resolves the remaining suffix against
// every element and concatenates the defined results into one flat slice,
// preserving source order; elements that fail to resolve are dropped.
func Resolve(doc any, path string) (any, bool) {
	return resolve(doc, Parse(path))
}

func resolve(current any, segs []Segment) (any, bool) {
	for i, seg := range segs {
		if seg.Array {
			var arr []any
			if seg.Name == "" {
				a, ok := current.([]any)
				if !ok {
					return nil, false
				}
				arr = a
			} else {
				m, ok := current.(map[string]any)
				if !ok {
					return nil, false
				}
				a, ok := m[seg.Name].([]any)
				if !ok {
					return nil, false
				}
				arr = a
			}
			if i == len(segs)-1 {
				return arr, true
			}
			return resolveElements(arr, segs[i+1:], 0), true
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg.Name]
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

// resolveElements resolves the suffix against each element, descending
// through nested arrays so that doubly-nested data still yields a flat
// sequence.
func resolveElements(elems []any, suffix []Segment, depth int) []any {
	if depth >= maxNesting {
		return nil
	}
	out := make([]any, 0, len(elems))
	for _, el := range elems {
		if sub, ok := el.([]any); ok {
			out = append(out, resolveElements(sub, suffix, depth+1)...)
			continue
		}
		v, ok := resolve(el, suffix)
		if !ok {
			continue
		}
		if vs, ok := v.([]any); ok {
			out = append(out, vs...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// FlattenValues expands nested slices in values into a single level and
// drops nil entries. The walk is iterative with an explicit stack; nesting
// beyond maxNesting is discarded rather than recursed into.
func FlattenValues(values []any) []any {
	type frame struct {
		items []any
		next  int
	}
	out := make([]any, 0, len(values))
	stack := []frame{{items: values}}
	for len(stack) > 0 {
		top := len(stack) - 1
		if stack[top].next >= len(stack[top].items) {
			stack = stack[:top]
			continue
		}
		v := stack[top].items[stack[top].next]
		stack[top].next++
		if sub, ok := v.([]any); ok {
			if len(stack) < maxNesting {
				stack = append(stack, frame{items: sub})
			}
			continue
		}
		if v == nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
