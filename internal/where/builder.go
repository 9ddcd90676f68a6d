package where

import (
	"fmt"
	"strings"
)

// Placeholder is the positional bind marker written into SQL text.
// Dialects that use numbered markers rewrite it with Rebind.
const Placeholder = "?"

// Operator is a binary SQL comparison operator.
type Operator string

const (
	OpEq   Operator = "="
	OpLike Operator = "LIKE"
	OpGt   Operator = ">"
	OpGte  Operator = ">="
	OpLt   Operator = "<"
	OpLte  Operator = "<="
)

// Inverse returns the operator that selects exactly the non-NULL rows this
// one rejects: > <-> <=, >= <-> <. Only ordering operators have an inverse.
func (op Operator) Inverse() (Operator, bool) {
	switch op {
	case OpGt:
		return OpLte, true
	case OpGte:
		return OpLt, true
	case OpLt:
		return OpGte, true
	case OpLte:
		return OpGt, true
	}
	return "", false
}

// Connective joins two predicates.
type Connective string

const (
	ConnAnd Connective = "AND"
	ConnOr  Connective = "OR"
)

// Builder accumulates a WHERE-clause fragment and its bind parameters.
//
// Builder is an immutable value: every method returns a new Builder and
// never modifies the receiver or its arguments, so fragments can be shared
// between nested joins without aliasing. The zero Builder is empty.
//
// Invariant: the number of placeholders in SQL() always equals
// len(Params()), in left-to-right order.
type Builder struct {
	sql    string
	params []SQLParam
}

// Comparison is shorthand for Builder{}.BindComparison(p, op).
func Comparison(p SQLParam, op Operator) Builder {
	return Builder{}.BindComparison(p, op)
}

// Null is shorthand for Builder{}.BindNull(column, negate).
func Null(column string, negate bool) Builder {
	return Builder{}.BindNull(column, negate)
}

// Join is shorthand for Builder{}.Join(conn, left, right).
func Join(conn Connective, left, right Builder) Builder {
	return Builder{}.Join(conn, left, right)
}

// BindComparison appends "column op ?" and records p as the next bind value.
func (b Builder) BindComparison(p SQLParam, op Operator) Builder {
	return b.extend(fmt.Sprintf("%s %s %s", p.Name, op, Placeholder), p)
}

// BindNull appends "column IS NULL" (or "column IS NOT NULL").
// No bind value is recorded.
func (b Builder) BindNull(column string, negate bool) Builder {
	if negate {
		return b.extend(column + " IS NOT NULL")
	}
	return b.extend(column + " IS NULL")
}

// Join appends "(left conn right)" and the parameters of left then right.
// An empty side is dropped and the other side is appended unwrapped.
func (b Builder) Join(conn Connective, left, right Builder) Builder {
	switch {
	case left.IsEmpty() && right.IsEmpty():
		return b.extend("")
	case left.IsEmpty():
		return b.extend(right.sql, right.params...)
	case right.IsEmpty():
		return b.extend(left.sql, left.params...)
	}
	params := make([]SQLParam, 0, len(left.params)+len(right.params))
	params = append(params, left.params...)
	params = append(params, right.params...)
	return b.extend(fmt.Sprintf("(%s %s %s)", left.sql, conn, right.sql), params...)
}

// Negate prefixes the fragment with "NOT ".
// Used for Equals and LIKE predicates; ordering predicates invert their
// operator instead (see Operator.Inverse).
func (b Builder) Negate() Builder {
	if b.IsEmpty() {
		return b
	}
	return Builder{sql: "NOT " + b.sql, params: b.params}
}

func (b Builder) extend(text string, params ...SQLParam) Builder {
	out := Builder{sql: b.sql + text}
	if len(b.params)+len(params) > 0 {
		out.params = make([]SQLParam, 0, len(b.params)+len(params))
		out.params = append(out.params, b.params...)
		out.params = append(out.params, params...)
	}
	return out
}

// IsEmpty reports whether no predicate text has been accumulated.
func (b Builder) IsEmpty() bool {
	return b.sql == ""
}

// SQL returns the fragment text with "?" placeholders.
func (b Builder) SQL() string {
	return b.sql
}

// Params returns a copy of the bind parameters in placeholder order.
func (b Builder) Params() []SQLParam {
	if len(b.params) == 0 {
		return nil
	}
	out := make([]SQLParam, len(b.params))
	copy(out, b.params)
	return out
}

// Args returns the driver values of the bind parameters in placeholder
// order, ready for db.QueryContext(ctx, query, args...).
func (b Builder) Args() []any {
	if len(b.params) == 0 {
		return nil
	}
	args := make([]any, len(b.params))
	for i, p := range b.params {
		args[i] = p.Arg()
	}
	return args
}

// Placeholders counts the bind markers in the fragment text, skipping
// quoted identifiers and literals.
func (b Builder) Placeholders() int {
	return len(placeholderOffsets(b.sql))
}

func (b Builder) String() string {
	if len(b.params) == 0 {
		return b.sql
	}
	parts := make([]string, len(b.params))
	for i, p := range b.params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s [%s]", b.sql, strings.Join(parts, ", "))
}
