package filter

import (
	"bytes"

	"github.com/roach88/dbfilter/internal/ir"
)

// Row is a single object's attributes, keyed by attribute name.
// A missing attribute is NULL.
type Row map[string]ir.IRValue

// truth is SQL three-valued logic: comparisons involving NULL are unknown,
// and NOT unknown stays unknown.
type truth int

const (
	unknown truth = iota
	isFalse
	isTrue
)

func truthOf(b bool) truth {
	if b {
		return isTrue
	}
	return isFalse
}

func (t truth) not() truth {
	switch t {
	case isTrue:
		return isFalse
	case isFalse:
		return isTrue
	}
	return unknown
}

func (t truth) and(o truth) truth {
	if t == isFalse || o == isFalse {
		return isFalse
	}
	if t == isTrue && o == isTrue {
		return isTrue
	}
	return unknown
}

func (t truth) or(o truth) truth {
	if t == isTrue || o == isTrue {
		return isTrue
	}
	if t == isFalse && o == isFalse {
		return isFalse
	}
	return unknown
}

// Matches evaluates f against row in memory.
//
// Evaluation mirrors the SQL the translator emits, so a row kept by the
// database for a pushed-down predicate is kept here too:
//   - Equals with a NULL value tests for absence (IS [NOT] NULL)
//   - any other comparison against a NULL attribute is unknown
//   - Contains/StartsWith/EndsWith use LIKE semantics on the wildcarded value
//   - ordering compares values of the same kind only
//
// A row matches only when the filter is definitely true. Binary values,
// which are never pushed down, compare bytewise for Equals.
//
// Matches assumes f passed Validate; nil nodes evaluate to unknown.
func Matches(f Filter, row Row) bool {
	return eval(f, row) == isTrue
}

func eval(f Filter, row Row) truth {
	switch n := Deref(f).(type) {
	case And:
		return eval(n.Left, row).and(eval(n.Right, row))
	case Or:
		return eval(n.Left, row).or(eval(n.Right, row))
	case Not:
		return eval(n.Filter, row).not()
	case Equals:
		return negate(evalEquals(n.Attr, row), n.Negated)
	case Contains:
		return negate(evalLike(n.Attr, row, ContainsPattern), n.Negated)
	case StartsWith:
		return negate(evalLike(n.Attr, row, StartsWithPattern), n.Negated)
	case EndsWith:
		return negate(evalLike(n.Attr, row, EndsWithPattern), n.Negated)
	case GreaterThan:
		return negate(evalOrder(n.Attr, row, func(c int) bool { return c > 0 }), n.Negated)
	case GreaterThanOrEqual:
		return negate(evalOrder(n.Attr, row, func(c int) bool { return c >= 0 }), n.Negated)
	case LessThan:
		return negate(evalOrder(n.Attr, row, func(c int) bool { return c < 0 }), n.Negated)
	case LessThanOrEqual:
		return negate(evalOrder(n.Attr, row, func(c int) bool { return c <= 0 }), n.Negated)
	default:
		return unknown
	}
}

func negate(t truth, negated bool) truth {
	if negated {
		return t.not()
	}
	return t
}

func evalEquals(attr Attribute, row Row) truth {
	actual := row[attr.Name]
	if ir.IsNull(attr.Value) {
		// IS NULL is never unknown.
		return truthOf(ir.IsNull(actual))
	}
	if ir.IsNull(actual) {
		return unknown
	}
	if want, ok := attr.Value.(ir.IRBytes); ok {
		got, ok := actual.(ir.IRBytes)
		return truthOf(ok && bytes.Equal(got, want))
	}
	c, ok := ir.Compare(actual, attr.Value)
	if !ok {
		return isFalse
	}
	return truthOf(c == 0)
}

func evalLike(attr Attribute, row Row, pattern func(string) string) truth {
	actual, ok := row[attr.Name].(ir.IRString)
	if !ok {
		return unknown
	}
	want, ok := attr.Value.(ir.IRString)
	if !ok {
		return unknown
	}
	return truthOf(LikeMatch(string(actual), pattern(string(want))))
}

func evalOrder(attr Attribute, row Row, test func(int) bool) truth {
	c, ok := ir.Compare(row[attr.Name], attr.Value)
	if !ok {
		return unknown
	}
	return truthOf(test(c))
}
