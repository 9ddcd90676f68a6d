package translate

import "github.com/roach88/dbfilter/internal/where"

// Result is the outcome of translating a filter node: either a SQL
// fragment (Supported) or a signal that SQL cannot express it
// (Unsupported). Unsupported is an expected outcome, not an error;
// callers must check Supported before using the fragment.
//
// The zero Result is Unsupported.
type Result struct {
	builder   where.Builder
	supported bool
	exact     bool
}

// Supported wraps a fragment that is exactly equivalent to its filter.
func Supported(b where.Builder) Result {
	return Result{builder: b, supported: true, exact: true}
}

// Unsupported is the result for a node that cannot be pushed to SQL.
func Unsupported() Result {
	return Result{}
}

// widened marks a supported result as broader than its filter: the
// fragment selects every matching row but possibly more.
func (r Result) widened() Result {
	r.exact = false
	return r
}

// Builder returns the fragment and true, or an empty builder and false
// when the filter is unsupported.
func (r Result) Builder() (where.Builder, bool) {
	return r.builder, r.supported
}

// Supported reports whether a SQL fragment was produced.
func (r Result) Supported() bool {
	return r.supported
}

// Exact reports whether the fragment selects exactly the rows the filter
// matches. It is false when a conjunct was dropped (or the whole filter
// is unsupported), in which case the caller must re-apply the filter in
// memory.
func (r Result) Exact() bool {
	return r.supported && r.exact
}

// SQL returns the fragment text, or "" when unsupported.
func (r Result) SQL() string {
	return r.builder.SQL()
}

// Args returns the bind values, or nil when unsupported.
func (r Result) Args() []any {
	return r.builder.Args()
}

// Params returns the bind parameters, or nil when unsupported.
func (r Result) Params() []where.SQLParam {
	return r.builder.Params()
}

func (r Result) String() string {
	switch {
	case !r.supported:
		return "<unsupported>"
	case !r.exact:
		return r.builder.String() + " (widened)"
	}
	return r.builder.String()
}

// Document renders the result as a plain map for canonical JSON output:
//
//	{"supported": true, "exact": true, "where": "age > ?",
//	 "params": [{"name": "age", "type": "BIGINT", "value": 30}]}
//
// Unsupported results carry only the two flags.
func (r Result) Document() map[string]any {
	doc := map[string]any{
		"supported": r.Supported(),
		"exact":     r.Exact(),
	}
	if !r.supported {
		return doc
	}
	ps := r.Params()
	params := make([]any, 0, len(ps))
	for _, p := range ps {
		params = append(params, map[string]any{
			"name":  p.Name,
			"type":  p.Type.String(),
			"value": p.Value,
		})
	}
	doc["where"] = r.SQL()
	doc["params"] = params
	return doc
}
