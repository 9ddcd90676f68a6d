package filter

import (
	"fmt"
	"strings"

	"github.com/roach88/dbfilter/internal/ir"
)

// Filter is an abstract, resource-agnostic search predicate.
//
// This is a sealed interface - only types in this package implement it.
// The marker method prevents external implementations and lets the
// translator switch exhaustively over Kind.
//
// Filter types:
//   - And, Or: binary combinators
//   - Not: negation of any subtree (pushed down by the translator)
//   - Equals, Contains, StartsWith, EndsWith: attribute matches
//   - GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual: ordering
//
// Filters are immutable values. Pointer forms (*Equals, *And, ...) also
// satisfy the interface; use Deref before switching on concrete types.
type Filter interface {
	Kind() Kind
	filterNode() // Marker method - seals interface to this package
}

// Leaf is a filter node that tests a single attribute.
type Leaf interface {
	Filter
	Attribute() Attribute
	IsNegated() bool
	// WithNegated returns a copy of the leaf with the negation flag set to n.
	WithNegated(n bool) Leaf
	// WithValue returns a copy of the leaf testing v instead.
	WithValue(v ir.IRValue) Leaf
}

// Kind enumerates filter node kinds.
type Kind int

const (
	KindAnd Kind = iota + 1
	KindOr
	KindNot
	KindEquals
	KindContains
	KindStartsWith
	KindEndsWith
	KindGreaterThan
	KindGreaterThanOrEqual
	KindLessThan
	KindLessThanOrEqual
)

var kindNames = map[Kind]string{
	KindAnd:                "and",
	KindOr:                 "or",
	KindNot:                "not",
	KindEquals:             "equals",
	KindContains:           "contains",
	KindStartsWith:         "startsWith",
	KindEndsWith:           "endsWith",
	KindGreaterThan:        "greaterThan",
	KindGreaterThanOrEqual: "greaterThanOrEqual",
	KindLessThan:           "lessThan",
	KindLessThanOrEqual:    "lessThanOrEqual",
}

// String returns the document key used for the kind ("equals", "and", ...).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// kindByName is the reverse of kindNames, used by the document decoder.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// Attribute is a name plus a single value.
// A nil or ir.IRNull value expresses NULL intent.
type Attribute struct {
	Name  string
	Value ir.IRValue
}

// Attr is a shorthand for building an Attribute.
func Attr(name string, value ir.IRValue) Attribute {
	return Attribute{Name: name, Value: value}
}

// And matches when both Left and Right match.
type And struct {
	Left  Filter
	Right Filter
}

func (And) Kind() Kind  { return KindAnd }
func (And) filterNode() {}

// Or matches when either Left or Right matches.
type Or struct {
	Left  Filter
	Right Filter
}

func (Or) Kind() Kind  { return KindOr }
func (Or) filterNode() {}

// Not matches when Filter does not match.
type Not struct {
	Filter Filter
}

func (Not) Kind() Kind  { return KindNot }
func (Not) filterNode() {}

// Equals matches when the attribute equals Attr.Value.
// A NULL value matches attributes with no value.
type Equals struct {
	Attr    Attribute
	Negated bool
}

func (Equals) Kind() Kind                    { return KindEquals }
func (Equals) filterNode()                   {}
func (f Equals) Attribute() Attribute        { return f.Attr }
func (f Equals) IsNegated() bool             { return f.Negated }
func (f Equals) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f Equals) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// Contains matches when the string attribute contains Attr.Value.
type Contains struct {
	Attr    Attribute
	Negated bool
}

func (Contains) Kind() Kind                    { return KindContains }
func (Contains) filterNode()                   {}
func (f Contains) Attribute() Attribute        { return f.Attr }
func (f Contains) IsNegated() bool             { return f.Negated }
func (f Contains) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f Contains) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// StartsWith matches when the string attribute begins with Attr.Value.
type StartsWith struct {
	Attr    Attribute
	Negated bool
}

func (StartsWith) Kind() Kind                    { return KindStartsWith }
func (StartsWith) filterNode()                   {}
func (f StartsWith) Attribute() Attribute        { return f.Attr }
func (f StartsWith) IsNegated() bool             { return f.Negated }
func (f StartsWith) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f StartsWith) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// EndsWith matches when the string attribute ends with Attr.Value.
type EndsWith struct {
	Attr    Attribute
	Negated bool
}

func (EndsWith) Kind() Kind                    { return KindEndsWith }
func (EndsWith) filterNode()                   {}
func (f EndsWith) Attribute() Attribute        { return f.Attr }
func (f EndsWith) IsNegated() bool             { return f.Negated }
func (f EndsWith) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f EndsWith) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// GreaterThan matches when the attribute orders after Attr.Value.
type GreaterThan struct {
	Attr    Attribute
	Negated bool
}

func (GreaterThan) Kind() Kind                    { return KindGreaterThan }
func (GreaterThan) filterNode()                   {}
func (f GreaterThan) Attribute() Attribute        { return f.Attr }
func (f GreaterThan) IsNegated() bool             { return f.Negated }
func (f GreaterThan) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f GreaterThan) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// GreaterThanOrEqual matches when the attribute orders at or after Attr.Value.
type GreaterThanOrEqual struct {
	Attr    Attribute
	Negated bool
}

func (GreaterThanOrEqual) Kind() Kind                    { return KindGreaterThanOrEqual }
func (GreaterThanOrEqual) filterNode()                   {}
func (f GreaterThanOrEqual) Attribute() Attribute        { return f.Attr }
func (f GreaterThanOrEqual) IsNegated() bool             { return f.Negated }
func (f GreaterThanOrEqual) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f GreaterThanOrEqual) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// LessThan matches when the attribute orders before Attr.Value.
type LessThan struct {
	Attr    Attribute
	Negated bool
}

func (LessThan) Kind() Kind                    { return KindLessThan }
func (LessThan) filterNode()                   {}
func (f LessThan) Attribute() Attribute        { return f.Attr }
func (f LessThan) IsNegated() bool             { return f.Negated }
func (f LessThan) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f LessThan) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// LessThanOrEqual matches when the attribute orders at or before Attr.Value.
type LessThanOrEqual struct {
	Attr    Attribute
	Negated bool
}

func (LessThanOrEqual) Kind() Kind                    { return KindLessThanOrEqual }
func (LessThanOrEqual) filterNode()                   {}
func (f LessThanOrEqual) Attribute() Attribute        { return f.Attr }
func (f LessThanOrEqual) IsNegated() bool             { return f.Negated }
func (f LessThanOrEqual) WithNegated(n bool) Leaf     { f.Negated = n; return f }
func (f LessThanOrEqual) WithValue(v ir.IRValue) Leaf { f.Attr.Value = v; return f }

// NewLeaf builds the leaf of the given kind.
// Returns an error for combinator kinds.
func NewLeaf(kind Kind, attr Attribute, negated bool) (Leaf, error) {
	switch kind {
	case KindEquals:
		return Equals{Attr: attr, Negated: negated}, nil
	case KindContains:
		return Contains{Attr: attr, Negated: negated}, nil
	case KindStartsWith:
		return StartsWith{Attr: attr, Negated: negated}, nil
	case KindEndsWith:
		return EndsWith{Attr: attr, Negated: negated}, nil
	case KindGreaterThan:
		return GreaterThan{Attr: attr, Negated: negated}, nil
	case KindGreaterThanOrEqual:
		return GreaterThanOrEqual{Attr: attr, Negated: negated}, nil
	case KindLessThan:
		return LessThan{Attr: attr, Negated: negated}, nil
	case KindLessThanOrEqual:
		return LessThanOrEqual{Attr: attr, Negated: negated}, nil
	default:
		return nil, fmt.Errorf("%s is not a leaf kind", kind)
	}
}

// AndAll folds filters into a left-deep And tree.
// Returns nil for no filters and the filter itself for one.
func AndAll(filters ...Filter) Filter {
	return fold(filters, func(l, r Filter) Filter { return And{Left: l, Right: r} })
}

// OrAll folds filters into a left-deep Or tree.
// Returns nil for no filters and the filter itself for one.
func OrAll(filters ...Filter) Filter {
	return fold(filters, func(l, r Filter) Filter { return Or{Left: l, Right: r} })
}

func fold(filters []Filter, join func(l, r Filter) Filter) Filter {
	if len(filters) == 0 {
		return nil
	}
	acc := filters[0]
	for _, f := range filters[1:] {
		acc = join(acc, f)
	}
	return acc
}

// Deref returns the value form of a pointer filter node (*Equals -> Equals).
// Non-pointer filters are returned unchanged; nil pointers become nil.
func Deref(f Filter) Filter {
	switch n := f.(type) {
	case *And:
		if n == nil {
			return nil
		}
		return *n
	case *Or:
		if n == nil {
			return nil
		}
		return *n
	case *Not:
		if n == nil {
			return nil
		}
		return *n
	case *Equals:
		if n == nil {
			return nil
		}
		return *n
	case *Contains:
		if n == nil {
			return nil
		}
		return *n
	case *StartsWith:
		if n == nil {
			return nil
		}
		return *n
	case *EndsWith:
		if n == nil {
			return nil
		}
		return *n
	case *GreaterThan:
		if n == nil {
			return nil
		}
		return *n
	case *GreaterThanOrEqual:
		if n == nil {
			return nil
		}
		return *n
	case *LessThan:
		if n == nil {
			return nil
		}
		return *n
	case *LessThanOrEqual:
		if n == nil {
			return nil
		}
		return *n
	}
	return f
}

// String renders a filter for logs and error messages, e.g.
//
//	(status equals null AND NOT age greaterThan 30)
func String(f Filter) string {
	var sb strings.Builder
	writeFilter(&sb, f)
	return sb.String()
}

func writeFilter(sb *strings.Builder, f Filter) {
	switch n := Deref(f).(type) {
	case nil:
		sb.WriteString("<nil>")
	case And:
		writeBinary(sb, "AND", n.Left, n.Right)
	case Or:
		writeBinary(sb, "OR", n.Left, n.Right)
	case Not:
		sb.WriteString("NOT (")
		writeFilter(sb, n.Filter)
		sb.WriteString(")")
	case Leaf:
		if n.IsNegated() {
			sb.WriteString("NOT ")
		}
		attr := n.Attribute()
		data, err := ir.MarshalIRValue(attr.Value)
		if err != nil {
			data = []byte(fmt.Sprintf("%v", attr.Value))
		}
		fmt.Fprintf(sb, "%s %s %s", attr.Name, n.Kind(), data)
	default:
		fmt.Fprintf(sb, "<%T>", f)
	}
}

func writeBinary(sb *strings.Builder, conn string, l, r Filter) {
	sb.WriteString("(")
	writeFilter(sb, l)
	sb.WriteString(" " + conn + " ")
	writeFilter(sb, r)
	sb.WriteString(")")
}
