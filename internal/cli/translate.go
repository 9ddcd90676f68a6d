package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/translate"
	"github.com/roach88/dbfilter/internal/where"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Mapping string // column mapping file (.cue, .yaml)
	Class   string // object class to translate for
	Dialect string // placeholder and quoting dialect
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <filter-file>",
		Short: "Translate a filter into a SQL WHERE fragment",
		Long: `Translate a filter document into a parameterized SQL WHERE fragment.

The filter file is YAML, JSON, or CUE. Attributes are resolved to columns
through the mapping for --class; placeholders and identifier quoting
follow --dialect.

A widened fragment (exact: false) selects a superset of the matching rows
and must be post-filtered.

Exit codes:
  0 - Fragment produced
  1 - Filter cannot be expressed in SQL
  2 - Command error (missing files, invalid mapping, unknown class)

Examples:
  dbfilter translate filter.yaml --mapping accounts.cue --class account
  dbfilter translate filter.yaml --mapping accounts.yaml --class account --dialect postgres
  dbfilter translate filter.cue --mapping accounts.cue --class account --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mapping, "mapping", "", "column mapping file (required)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "object class (required)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", string(where.SQLite), "SQL dialect (sqlite3|postgres|mysql)")
	_ = cmd.MarkFlagRequired("mapping")
	_ = cmd.MarkFlagRequired("class")

	return cmd
}

func runTranslate(opts *TranslateOptions, filterFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dialect, err := where.ParseDialect(opts.Dialect)
	if err != nil {
		return failCommand(formatter, err)
	}
	mapping, err := loadMapping(opts.Mapping)
	if err != nil {
		return failCommand(formatter, err)
	}
	if _, err := lookupClass(mapping, opts.Class); err != nil {
		return failCommand(formatter, err)
	}
	f, err := loadFilter(filterFile)
	if err != nil {
		return failCommand(formatter, err)
	}
	formatter.VerboseLog("Translating %s for class %s (%s)", filterFile, opts.Class, dialect)

	resolver := colmap.NewResolver(mapping, dialect)
	tr, err := translate.New(query.ObjectClass(opts.Class), query.Options{}, resolver).Translate(f)
	if err != nil {
		return failCommand(formatter, err)
	}

	doc := tr.Document()
	doc["filter"] = filter.String(f)
	doc["dialect"] = string(dialect)
	if tr.Supported() {
		doc["where"] = dialect.Rebind(tr.SQL())
	}

	if formatter.Format == "json" {
		return outputTranslateJSON(formatter, tr, doc)
	}
	return outputTranslateText(formatter.Writer, tr, doc)
}

func outputTranslateJSON(formatter *OutputFormatter, tr translate.Result, doc map[string]any) error {
	data, err := canonicalData(doc)
	if err != nil {
		return err
	}

	if !tr.Supported() {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   data,
			Error: &CLIError{
				Code:    ErrCodeUnsupported,
				Message: "filter cannot be expressed in SQL",
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "filter cannot be expressed in SQL")
	}

	return formatter.Respond(CLIResponse{Status: "ok", Data: data})
}

func outputTranslateText(w io.Writer, tr translate.Result, doc map[string]any) error {
	fmt.Fprintf(w, "Filter: %s\n", doc["filter"])

	if !tr.Supported() {
		fmt.Fprintln(w, "✗ Filter cannot be expressed in SQL")
		fmt.Fprintln(w, "  Every row must be fetched and post-filtered")
		return NewExitError(ExitFailure, "filter cannot be expressed in SQL")
	}

	fmt.Fprintf(w, "WHERE: %s\n", doc["where"])
	params := tr.Params()
	if len(params) > 0 {
		fmt.Fprintln(w, "Params:")
		for i, p := range params {
			value, err := ir.MarshalCanonical(p.Value)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %d. %s %s = %s\n", i+1, p.Name, p.Type, value)
		}
	}

	if tr.Exact() {
		fmt.Fprintln(w, "✓ Exact")
	} else {
		fmt.Fprintln(w, "~ Widened (post-filter required)")
	}
	return nil
}
