package domain

import "strings"

// SetPath assigns value at a dot-separated path inside target, creating
// intermediate records as needed, and returns target.
//
// An intermediate slot that is absent or holds a non-record value is
// replaced by a new empty record. The leaf is overwritten, never merged.
// SetPath mutates target in place; callers pass a scratch copy.
func SetPath(target map[string]any, path string, value any) (map[string]any, error) {
	if target == nil {
		return nil, ErrInvalidTarget
	}
	if path == "" {
		return nil, ErrInvalidPath
	}

	keys := strings.Split(path, ".")
	cur := target
	for _, key := range keys[:len(keys)-1] {
		next, ok := asRecord(cur[key])
		if !ok {
			next = make(map[string]any)
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
	return target, nil
}

// LookupPath returns the value at a dot-separated path, if present.
func LookupPath(target map[string]any, path string) (any, bool) {
	if target == nil || path == "" {
		return nil, false
	}
	keys := strings.Split(path, ".")
	cur := target
	for _, key := range keys[:len(keys)-1] {
		next, ok := asRecord(cur[key])
		if !ok {
			return nil, false
		}
		cur = next
	}
	v, ok := cur[keys[len(keys)-1]]
	return v, ok
}

func asRecord(v any) (map[string]any, bool) {
	switch rec := v.(type) {
	case map[string]any:
		return rec, rec != nil
	case Fields:
		return rec, rec != nil
	default:
		return nil, false
	}
}
