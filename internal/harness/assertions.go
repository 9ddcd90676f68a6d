package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/translate"
)

// AssertionError is returned when an assertion fails.
// It includes the translated filter to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Fragment string // Translation summary for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nTranslation: %s\n", e.Fragment)

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result and the
// translation it was built from.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, tr translate.Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertWhere:
			got, _ := result.Translation["where"].(string)
			err = expectEqual(assertion.Type, tr, assertion.Where, got)
		case AssertArgs:
			err = assertArgs(tr, assertion)
		case AssertSupported:
			err = expectEqual(assertion.Type, tr, *assertion.Value, tr.Supported())
		case AssertExact:
			err = expectEqual(assertion.Type, tr, *assertion.Value, tr.Exact())
		case AssertResultKeys:
			if !result.Searched() {
				err = fmt.Errorf("assertion[%d]: result_keys requires rows", i)
				break
			}
			err = expectEqual(assertion.Type, tr, fmt.Sprint(normalizeKeys(assertion.Keys)), fmt.Sprint(result.Keys))
		case AssertPostFiltered:
			if !result.Searched() {
				err = fmt.Errorf("assertion[%d]: post_filtered requires rows", i)
				break
			}
			err = expectEqual(assertion.Type, tr, *assertion.Value, result.PostFiltered)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func expectEqual[T comparable](typ string, tr translate.Result, expected, actual T) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprint(expected),
		Actual:   fmt.Sprint(actual),
		Fragment: tr.String(),
	}
}

// assertArgs compares bind values as canonical JSON so YAML ints match
// driver int64s.
func assertArgs(tr translate.Result, assertion Assertion) error {
	expected := make([]any, len(assertion.Args))
	for i, arg := range assertion.Args {
		v, err := ir.FromAny(arg)
		if err != nil {
			return fmt.Errorf("args[%d]: %w", i, err)
		}
		expected[i] = v
	}
	params := tr.Params()
	actual := make([]any, len(params))
	for i, p := range params {
		actual[i] = p.Value
	}

	want, err := ir.MarshalCanonical(expected)
	if err != nil {
		return err
	}
	got, err := ir.MarshalCanonical(actual)
	if err != nil {
		return err
	}
	return expectEqual(AssertArgs, tr, string(want), string(got))
}

func normalizeKeys(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}
