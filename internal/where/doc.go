// Package where builds parameterized SQL WHERE-clause fragments.
//
// A Builder is an immutable accumulator of predicate text and bind
// parameters. Fragments are always standalone predicates, so they nest
// inside AND/OR joins without re-parsing:
//
//	left := where.Null("status", false)                       // status IS NULL
//	right := where.Comparison(where.Param("age", ir.IRInt(30), where.Integer), where.OpLte)
//	b := where.Join(where.ConnAnd, left, right)               // (status IS NULL AND age <= ?)
//	db.QueryContext(ctx, "SELECT ... WHERE "+b.SQL(), b.Args()...)
//
// CRITICAL: values are never interpolated into SQL text. Every value goes
// through a placeholder, and the placeholder count always equals the
// parameter count.
package where
