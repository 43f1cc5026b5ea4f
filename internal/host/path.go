package host

import (
	"fmt"
	"strings"
)

// SetPath writes value into doc at the given dot path, creating
// intermediate maps as needed. An intermediate segment that exists but
// is not a map is replaced; partial-update semantics never fail on
// missing structure.
//
// Precondition: path must be non-empty.
func SetPath(doc map[string]any, path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty update path")
	}
	segments := strings.Split(path, ".")
	cur := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
	return nil
}

// GetPath reads the value at the given dot path, returning (nil, false)
// when any segment is missing.
func GetPath(doc map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var cur any = doc
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// ApplyChanges applies a batch of dot-path updates to doc.
func ApplyChanges(doc map[string]any, changes map[string]any) error {
	for path, value := range changes {
		if err := SetPath(doc, path, value); err != nil {
			return err
		}
	}
	return nil
}
