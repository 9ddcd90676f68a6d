// Package translate pushes filter trees down to SQL.
//
// A Translator walks a filter.Filter and produces a Result: a WHERE-clause
// fragment with bind parameters, or Unsupported when SQL cannot express the
// filter. Column names and bind types come from a ColumnResolver supplied
// by the caller.
//
// Supported results may be inexact. When one side of an And cannot be
// translated, the other side is kept alone and the fragment selects a
// superset of the matching rows; Result.Exact then reports false and the
// caller re-applies the filter in memory (filter.Matches).
package translate
