package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	StoreOptions
	Query query.Options
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "search [filter-file]",
		Short: "Search mapped rows with a filter",
		Long: `Search the rows of one class with a filter.

The filter is pushed down to SQL where possible. When the pushed fragment
is widened or the filter is unsupported, rows are re-checked in memory and
paging is applied after that check. Without a filter file every row is
returned.

Examples:
  dbfilter search --db ./accounts.db --mapping accounts.cue --class account filter.yaml
  dbfilter search --db ./accounts.db --mapping accounts.cue --class account --sort age --desc --page-size 10
  dbfilter search --db ./accounts.db --mapping accounts.cue --class account --attrs name,age filter.yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filterFile := ""
			if len(args) == 1 {
				filterFile = args[0]
			}
			return runSearch(opts, filterFile, cmd)
		},
	}

	addStoreFlags(cmd, &opts.StoreOptions)
	cmd.Flags().IntVar(&opts.Query.PageSize, "page-size", 0, "maximum rows to return (0 = all)")
	cmd.Flags().IntVar(&opts.Query.PagedResultsOffset, "offset", 0, "matching rows to skip")
	cmd.Flags().StringVar(&opts.Query.SortBy, "sort", "", "attribute to order by (default: class key)")
	cmd.Flags().BoolVar(&opts.Query.SortDescending, "desc", false, "sort descending")
	cmd.Flags().StringSliceVar(&opts.Query.AttributesToGet, "attrs", nil, "attributes to return (default: all)")

	return cmd
}

func runSearch(opts *SearchOptions, filterFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := opts.Query.Validate(); err != nil {
		return failCommand(formatter, &LoadError{Code: ErrCodeInvalidOptions, Message: err.Error()})
	}

	var f filter.Filter
	if filterFile != "" {
		var err error
		if f, err = loadFilter(filterFile); err != nil {
			return failCommand(formatter, err)
		}
	}

	st, _, err := openStore(&opts.StoreOptions)
	if err != nil {
		return failCommand(formatter, err)
	}
	defer st.Close()

	res, err := st.Search(ctx, query.ObjectClass(opts.Class), f, opts.Query)
	if err != nil {
		code := ErrCodeDatabase
		if errors.Is(err, store.ErrUnknownAttribute) {
			code = ErrCodeInvalidOptions
		}
		return failCommand(formatter, &LoadError{Code: code, Message: err.Error()})
	}

	if formatter.Format == "json" {
		data, err := canonicalData(searchDocument(res))
		if err != nil {
			return err
		}
		return formatter.Respond(CLIResponse{Status: "ok", Data: data, RequestID: res.RequestID})
	}
	return outputSearchText(formatter, res)
}

// searchDocument renders a search result for canonical JSON.
func searchDocument(res *store.SearchResult) map[string]any {
	rows := make([]any, len(res.Rows))
	for i, row := range res.Rows {
		rows[i] = rowDocument(row)
	}
	return map[string]any{
		"request_id":    res.RequestID,
		"where":         res.Where,
		"exact":         res.Exact,
		"post_filtered": res.PostFiltered,
		"rows":          rows,
	}
}

func rowDocument(row filter.Row) map[string]any {
	doc := make(map[string]any, len(row))
	for name, v := range row {
		doc[name] = v
	}
	return doc
}

func outputSearchText(formatter *OutputFormatter, res *store.SearchResult) error {
	w := formatter.Writer
	formatter.VerboseLog("Request %s", res.RequestID)

	if res.Where != "" {
		fmt.Fprintf(w, "WHERE: %s\n", res.Where)
	}
	for _, row := range res.Rows {
		line, err := ir.MarshalCanonical(rowDocument(row))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(line))
	}

	summary := fmt.Sprintf("%d row(s)", len(res.Rows))
	if res.PostFiltered {
		summary += " (post-filtered)"
	}
	fmt.Fprintln(w, summary)
	return nil
}
