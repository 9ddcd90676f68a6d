package translate

import (
	"fmt"
	"log/slog"

	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

// ColumnResolver maps a filter attribute to a physical column and a typed
// bind value for one object class.
//
// Returns false when the attribute has no column or its value cannot be
// bound; the translator treats that node as unsupported. Implementations
// must be deterministic for identical inputs within one search and safe
// for concurrent use.
type ColumnResolver interface {
	ResolveColumn(attr filter.Attribute, class query.ObjectClass, opts query.Options) (where.SQLParam, bool)
}

// ResolverFunc adapts a function to ColumnResolver.
type ResolverFunc func(attr filter.Attribute, class query.ObjectClass, opts query.Options) (where.SQLParam, bool)

// ResolveColumn calls f.
func (f ResolverFunc) ResolveColumn(attr filter.Attribute, class query.ObjectClass, opts query.Options) (where.SQLParam, bool) {
	return f(attr, class, opts)
}

// Translator turns filter trees into WHERE-clause fragments for one object
// class.
//
// A Translator is immutable after New and safe to share between
// concurrent searches: every call builds its own fragments.
type Translator struct {
	class    query.ObjectClass
	opts     query.Options
	resolver ColumnResolver
}

// New creates a Translator. The class and options are passed through to
// resolver untouched.
func New(class query.ObjectClass, opts query.Options, resolver ColumnResolver) *Translator {
	return &Translator{
		class:    class,
		opts:     opts,
		resolver: resolver,
	}
}

// Translate converts f into a Result.
//
// Returns an error only for malformed trees (see filter.Validate) or a nil
// resolver. A well-formed filter that SQL cannot express yields an
// Unsupported result and a nil error.
//
// Combination policy:
//   - And with one unsupported side keeps the other side alone. The
//     fragment then selects a superset of the matching rows and the result
//     is marked inexact so the caller re-applies the filter.
//   - Or with any unsupported side is unsupported: dropping a disjunct
//     would lose matching rows.
//
// Negation is pushed down to the leaves before combining (De Morgan for
// And/Or), so a widened fragment is never negated into a narrower one.
func (t *Translator) Translate(f filter.Filter) (Result, error) {
	if t.resolver == nil {
		return Result{}, fmt.Errorf("translate: no column resolver configured")
	}
	if err := filter.Validate(f); err != nil {
		return Result{}, err
	}

	res, err := t.translate(f, false)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("filter translated",
		"class", t.class,
		"filter", filter.String(f),
		"supported", res.Supported(),
		"exact", res.Exact(),
		"where", res.SQL(),
		"params", len(res.Params()))

	return res, nil
}

// translate walks f with the pending negation not.
func (t *Translator) translate(f filter.Filter, not bool) (Result, error) {
	switch n := filter.Deref(f).(type) {
	case filter.And:
		if not {
			// NOT (a AND b) == (NOT a) OR (NOT b)
			return t.combine(n.Left, n.Right, true, t.or)
		}
		return t.combine(n.Left, n.Right, false, t.and)

	case filter.Or:
		if not {
			// NOT (a OR b) == (NOT a) AND (NOT b)
			return t.combine(n.Left, n.Right, true, t.and)
		}
		return t.combine(n.Left, n.Right, false, t.or)

	case filter.Not:
		return t.translate(n.Filter, !not)

	case filter.Leaf:
		// A negated leaf under a pending negation cancels out.
		return t.leaf(n, n.IsNegated() != not), nil

	default:
		return Result{}, &filter.MalformedError{Message: fmt.Sprintf("unsupported filter type %T", f)}
	}
}

func (t *Translator) combine(left, right filter.Filter, not bool, join func(l, r Result) Result) (Result, error) {
	l, err := t.translate(left, not)
	if err != nil {
		return Result{}, err
	}
	r, err := t.translate(right, not)
	if err != nil {
		return Result{}, err
	}
	return join(l, r), nil
}

// and drops an unsupported conjunct; the survivor is widened.
func (t *Translator) and(l, r Result) Result {
	switch {
	case l.supported && r.supported:
		b := where.Join(where.ConnAnd, l.builder, r.builder)
		return Result{builder: b, supported: true, exact: l.exact && r.exact}
	case l.supported:
		return l.widened()
	case r.supported:
		return r.widened()
	}
	return Unsupported()
}

// or is unsupported unless both disjuncts are supported.
func (t *Translator) or(l, r Result) Result {
	if !l.supported || !r.supported {
		return Unsupported()
	}
	b := where.Join(where.ConnOr, l.builder, r.builder)
	return Result{builder: b, supported: true, exact: l.exact && r.exact}
}

// leaf translates a single attribute test with the effective negation.
func (t *Translator) leaf(n filter.Leaf, negated bool) Result {
	attr := n.Attribute()

	// Binary attributes are never pushed down, whatever the operator.
	if ir.IsBinary(attr.Value) {
		return t.unsupported(n, "binary attribute value")
	}

	param, ok := t.resolver.ResolveColumn(attr, t.class, t.opts)
	if !ok {
		return t.unsupported(n, "attribute has no column mapping")
	}
	if ir.IsBinary(param.Value) {
		return t.unsupported(n, "binary column value")
	}

	switch n.Kind() {
	case filter.KindEquals:
		return equals(param, negated)
	case filter.KindContains:
		return t.like(n, param, negated, filter.ContainsPattern)
	case filter.KindStartsWith:
		return t.like(n, param, negated, filter.StartsWithPattern)
	case filter.KindEndsWith:
		return t.like(n, param, negated, filter.EndsWithPattern)
	case filter.KindGreaterThan:
		return t.ordering(n, param, where.OpGt, negated)
	case filter.KindGreaterThanOrEqual:
		return t.ordering(n, param, where.OpGte, negated)
	case filter.KindLessThan:
		return t.ordering(n, param, where.OpLt, negated)
	case filter.KindLessThanOrEqual:
		return t.ordering(n, param, where.OpLte, negated)
	}
	return t.unsupported(n, "unknown leaf kind")
}

// equals special-cases NULL: "col = NULL" is never true in SQL.
func equals(param where.SQLParam, negated bool) Result {
	if param.IsNull() {
		return Supported(where.Null(param.Name, negated))
	}
	b := where.Comparison(param, where.OpEq)
	if negated {
		b = b.Negate()
	}
	return Supported(b)
}

// like binds a wildcarded string. LIKE is defined over strings only.
func (t *Translator) like(n filter.Leaf, param where.SQLParam, negated bool, pattern func(string) string) Result {
	if param.IsNull() {
		return t.unsupported(n, "NULL value for LIKE")
	}
	s, ok := param.Value.(ir.IRString)
	if !ok {
		return t.unsupported(n, "non-string value for LIKE")
	}
	b := where.Comparison(param.WithValue(ir.IRString(pattern(string(s)))), where.OpLike)
	if negated {
		b = b.Negate()
	}
	return Supported(b)
}

// ordering inverts the operator on negation instead of wrapping in NOT.
// Equivalent because NULL operands are rejected first.
func (t *Translator) ordering(n filter.Leaf, param where.SQLParam, op where.Operator, negated bool) Result {
	if param.IsNull() {
		return t.unsupported(n, "NULL value for ordering comparison")
	}
	if negated {
		op, _ = op.Inverse()
	}
	return Supported(where.Comparison(param, op))
}

func (t *Translator) unsupported(n filter.Leaf, reason string) Result {
	slog.Debug("filter not pushed down",
		"class", t.class,
		"op", n.Kind().String(),
		"attribute", n.Attribute().Name,
		"reason", reason)
	return Unsupported()
}
