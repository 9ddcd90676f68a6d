package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/filter"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Mapping string // optional: also check attributes against this mapping
	Class   string
}

// ValidationIssue is one problem found in a filter document.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Filter     string            `json:"filter,omitempty"`
	Attributes []string          `json:"attributes,omitempty"`
	Errors     []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <filter-file>",
		Short: "Validate a filter document without translating it",
		Long: `Validate a filter document without translating it.

Checks that the document decodes into a well-formed filter tree. With
--mapping and --class, also checks that every attribute the filter names
is mapped to a column; unmapped attributes would make their leaves
unsupported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mapping, "mapping", "", "column mapping file")
	cmd.Flags().StringVar(&opts.Class, "class", "", "object class (with --mapping)")
	cmd.MarkFlagsRequiredTogether("mapping", "class")

	return cmd
}

func runValidate(opts *ValidateOptions, filterFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(filterFile); os.IsNotExist(err) {
		return failCommand(formatter, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("filter file not found: %s", filterFile),
		})
	}

	var cm *colmap.ClassMapping
	if opts.Mapping != "" {
		mapping, err := loadMapping(opts.Mapping)
		if err != nil {
			return failCommand(formatter, err)
		}
		found, err := lookupClass(mapping, opts.Class)
		if err != nil {
			return failCommand(formatter, err)
		}
		cm = &found
	}

	f, err := loadFilter(filterFile)
	if err != nil {
		loadErr := asLoadError(err)
		return outputValidationErrors(formatter, []ValidationIssue{{Code: loadErr.Code, Message: loadErr.Message}})
	}

	attrs := filter.AttributeNames(f)
	formatter.VerboseLog("Filter references %d attribute(s): %s", len(attrs), strings.Join(attrs, ", "))

	if cm != nil {
		var issues []ValidationIssue
		for _, name := range attrs {
			if _, ok := cm.Attributes[name]; !ok {
				issues = append(issues, ValidationIssue{
					Code:    ErrCodeUnmappedAttr,
					Message: fmt.Sprintf("attribute %q is not mapped for class %s", name, opts.Class),
				})
			}
		}
		if len(issues) > 0 {
			return outputValidationErrors(formatter, issues)
		}
	}

	return outputValidateSuccess(formatter, ValidationResult{
		Valid:      true,
		Filter:     filter.String(f),
		Attributes: attrs,
	})
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Filter valid")
	fmt.Fprintf(formatter.Writer, "  %s\n", result.Filter)
	return nil
}

// outputValidationErrors outputs validation failures.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
