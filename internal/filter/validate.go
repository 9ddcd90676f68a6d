package filter

import (
	"fmt"
	"strings"
)

// MalformedError reports a filter tree that violates the construction
// contract (nil nodes, unnamed attributes). It is a programming error on the
// caller's side, distinct from a well-formed filter that SQL cannot express.
type MalformedError struct {
	// Path locates the offending node, e.g. "and.right.not".
	Path    string
	Message string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed filter: %s", e.Message)
	}
	return fmt.Sprintf("malformed filter at %s: %s", e.Path, e.Message)
}

// Validate checks that a filter tree is well-formed.
//
// Rules:
//  1. No nil nodes (including typed nil pointers)
//  2. And/Or have both children; Not has a child
//  3. Every leaf names its attribute
//
// NULL attribute values are valid here: whether NULL is meaningful for an
// operator is a translation concern, not a structural one.
//
// Returns the first violation found as a *MalformedError.
func Validate(f Filter) error {
	return validate(f, nil)
}

func validate(f Filter, path []string) error {
	switch n := Deref(f).(type) {
	case nil:
		return malformed(path, "nil filter node")
	case And:
		return validateBinary(path, "and", n.Left, n.Right)
	case Or:
		return validateBinary(path, "or", n.Left, n.Right)
	case Not:
		return validate(n.Filter, append(path, "not"))
	case Leaf:
		if strings.TrimSpace(n.Attribute().Name) == "" {
			return malformed(append(path, n.Kind().String()), "attribute name is empty")
		}
		return nil
	default:
		return malformed(path, fmt.Sprintf("unknown filter type %T", f))
	}
}

func validateBinary(path []string, op string, left, right Filter) error {
	if err := validate(left, append(append([]string{}, path...), op, "left")); err != nil {
		return err
	}
	return validate(right, append(append([]string{}, path...), op, "right"))
}

func malformed(path []string, msg string) *MalformedError {
	return &MalformedError{Path: strings.Join(path, "."), Message: msg}
}

// Walk visits every node of f in depth-first, left-to-right order.
// Visiting stops early when fn returns false.
func Walk(f Filter, fn func(Filter) bool) {
	walk(f, fn)
}

func walk(f Filter, fn func(Filter) bool) bool {
	n := Deref(f)
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	switch n := n.(type) {
	case And:
		return walk(n.Left, fn) && walk(n.Right, fn)
	case Or:
		return walk(n.Left, fn) && walk(n.Right, fn)
	case Not:
		return walk(n.Filter, fn)
	}
	return true
}

// MapLeaves returns a copy of f with every leaf replaced by fn(leaf).
// Pointer nodes come back as values; nil stays nil.
func MapLeaves(f Filter, fn func(Leaf) Leaf) Filter {
	switch n := Deref(f).(type) {
	case nil:
		return nil
	case And:
		return And{Left: MapLeaves(n.Left, fn), Right: MapLeaves(n.Right, fn)}
	case Or:
		return Or{Left: MapLeaves(n.Left, fn), Right: MapLeaves(n.Right, fn)}
	case Not:
		return Not{Filter: MapLeaves(n.Filter, fn)}
	case Leaf:
		return fn(n)
	default:
		return n
	}
}

// AttributeNames returns the distinct attribute names referenced by f,
// in first-seen order.
func AttributeNames(f Filter) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(f, func(n Filter) bool {
		if leaf, ok := n.(Leaf); ok {
			name := leaf.Attribute().Name
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return true
	})
	return names
}
