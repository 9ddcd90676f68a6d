package filter

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// ParseCUE compiles a CUE filter document. The document uses the same
// shape as the YAML form:
//
//	and: [
//		{equals: status: null},
//		{not: greaterThan: age: 30},
//	]
//
// CUE lets mapping authors share fragments via definitions and
// references; only the evaluated, concrete value is translated.
func ParseCUE(data []byte, filename string) (Filter, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	return CompileCUE(v)
}

// CompileCUE converts a concrete CUE value into a filter.
func CompileCUE(v cue.Value) (Filter, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc any
	if err := v.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return FromDocument(doc)
}

// formatCUEError flattens CUE's error list into one error with positions.
func formatCUEError(err error) error {
	return fmt.Errorf("cue: %s", errors.Details(err, nil))
}
