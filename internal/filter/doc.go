// Package filter provides the resource-agnostic search filter tree that the
// translator turns into SQL.
//
// ARCHITECTURE:
//
//	[filter document] → [Filter tree] → [translate] → [WHERE fragment + args]
//	                                  ↘ [Matches]  (in-memory post-filter)
//
// SEALED INTERFACES:
//
// Filter and Leaf are sealed with a marker method. Only types in this
// package implement them, so the translator can switch over every Kind and
// a new kind is a compile-visible change.
//
// NULL SEMANTICS:
//
// An attribute with a nil or ir.IRNull value expresses NULL intent. Equals
// with NULL means "has no value"; every other operator treats NULL as
// not comparable. Matches follows SQL three-valued logic so the post-filter
// agrees with what the database would have returned.
//
// DOCUMENTS:
//
// Filters are usually authored as YAML/JSON or CUE documents:
//
//	or:
//	  - startsWith: {uid: adm}
//	  - equals: {department: null}
//	    negated: true
package filter
