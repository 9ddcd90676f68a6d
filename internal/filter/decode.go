package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dbfilter/internal/ir"
)

// negatedKey marks a leaf as negated in filter documents.
const negatedKey = "negated"

// DecodeError reports a filter document that cannot be turned into a
// filter tree.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode filter: %s", e.Message)
	}
	return fmt.Sprintf("decode filter at %s: %s", e.Path, e.Message)
}

// ParseYAML decodes a filter document. JSON is valid YAML, so this accepts
// both. Document shape:
//
//	and:
//	  - equals: {status: null}
//	  - not:
//	      greaterThan: {age: 30}
//	  - contains: {name: bob}
//	    negated: true
//
// and/or take a list of two or more children, folded left.
func ParseYAML(data []byte) (Filter, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse filter document: %w", err)
	}
	return FromDocument(doc)
}

// DecodeNode decodes a filter embedded in a larger YAML document
// (for example the filter field of a scenario).
func DecodeNode(node *yaml.Node) (Filter, error) {
	var doc any
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode filter node: %w", err)
	}
	return FromDocument(doc)
}

// LoadFile reads a filter document from disk.
// Files ending in .cue are compiled with CUE; anything else is YAML/JSON.
func LoadFile(path string) (Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return ParseCUE(data, path)
	}
	return ParseYAML(data)
}

// FromDocument builds a filter from a generic decoded document
// (map[string]any trees as produced by yaml, json, or CUE decoding).
func FromDocument(doc any) (Filter, error) {
	return fromDoc(doc, "")
}

func fromDoc(doc any, path string) (Filter, error) {
	m, err := asMap(doc, path)
	if err != nil {
		return nil, err
	}

	negated := false
	if raw, ok := m[negatedKey]; ok {
		b, isBool := raw.(bool)
		if !isBool {
			return nil, &DecodeError{Path: join(path, negatedKey), Message: fmt.Sprintf("must be a bool, got %T", raw)}
		}
		negated = b
	}

	var ops []string
	for k := range m {
		if k != negatedKey {
			ops = append(ops, k)
		}
	}
	sort.Strings(ops)
	if len(ops) != 1 {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected exactly one operator, got %v", ops)}
	}
	op := ops[0]
	kind, ok := kindByName[op]
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("unknown operator %q", op)}
	}
	here := join(path, op)
	body := m[op]

	switch kind {
	case KindAnd, KindOr:
		if negated {
			return nil, &DecodeError{Path: path, Message: "negated applies to leaves only; wrap in not"}
		}
		children, err := fromList(body, here)
		if err != nil {
			return nil, err
		}
		if kind == KindAnd {
			return AndAll(children...), nil
		}
		return OrAll(children...), nil

	case KindNot:
		if negated {
			return nil, &DecodeError{Path: path, Message: "negated applies to leaves only; wrap in not"}
		}
		inner, err := fromDoc(body, here)
		if err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil

	default:
		attr, err := attributeFromDoc(body, here)
		if err != nil {
			return nil, err
		}
		return NewLeaf(kind, attr, negated)
	}
}

func fromList(body any, path string) ([]Filter, error) {
	items, ok := body.([]any)
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected a list, got %T", body)}
	}
	if len(items) < 2 {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("needs at least two children, got %d", len(items))}
	}
	children := make([]Filter, 0, len(items))
	for i, item := range items {
		child, err := fromDoc(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func attributeFromDoc(body any, path string) (Attribute, error) {
	m, err := asMap(body, path)
	if err != nil {
		return Attribute{}, err
	}
	if len(m) != 1 {
		return Attribute{}, &DecodeError{Path: path, Message: fmt.Sprintf("expected exactly one attribute, got %d", len(m))}
	}
	for name, raw := range m {
		v, err := ir.FromAny(raw)
		if err != nil {
			return Attribute{}, &DecodeError{Path: join(path, name), Message: err.Error()}
		}
		return Attribute{Name: name, Value: v}, nil
	}
	return Attribute{}, nil
}

// asMap accepts both map[string]any (yaml, json, CUE) and the
// map[any]any form some YAML producers still emit.
func asMap(doc any, path string) (map[string]any, error) {
	switch m := doc.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, &DecodeError{Path: path, Message: fmt.Sprintf("non-string key %v", k)}
			}
			out[ks] = v
		}
		return out, nil
	case nil:
		return nil, &DecodeError{Path: path, Message: "empty filter"}
	default:
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected a mapping, got %T", doc)}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
