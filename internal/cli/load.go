package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/store"
)

// StoreOptions holds the flags shared by commands that open a database.
type StoreOptions struct {
	*RootOptions
	DB      string // database DSN (file path for sqlite3)
	Driver  string // database/sql driver name
	Mapping string // column mapping file
	Class   string // object class
}

func addStoreFlags(cmd *cobra.Command, opts *StoreOptions) {
	cmd.Flags().StringVar(&opts.DB, "db", "", "database path or DSN (required)")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite3", "database driver (sqlite3|postgres|mysql)")
	cmd.Flags().StringVar(&opts.Mapping, "mapping", "", "column mapping file (required)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "object class (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("mapping")
	_ = cmd.MarkFlagRequired("class")
}

// openStore loads the mapping, checks the class, and opens the database.
func openStore(opts *StoreOptions) (*store.Store, colmap.ClassMapping, error) {
	mapping, err := loadMapping(opts.Mapping)
	if err != nil {
		return nil, colmap.ClassMapping{}, err
	}
	cm, err := lookupClass(mapping, opts.Class)
	if err != nil {
		return nil, colmap.ClassMapping{}, err
	}

	st, err := store.Open(opts.Driver, opts.DB, mapping)
	if err != nil {
		return nil, colmap.ClassMapping{}, &LoadError{Code: ErrCodeDatabase, Message: err.Error()}
	}
	return st, cm, nil
}

// LoadResult summarizes a load command.
type LoadResult struct {
	Class string `json:"class"`
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <rows-file>",
		Short: "Create mapped tables and insert rows",
		Long: `Create the tables described by the mapping (if missing) and insert
rows for one class.

The rows file is a YAML or JSON list of objects keyed by attribute name.
Binary values are written as {"$binary": "<base64>"}.

Examples:
  dbfilter load --db ./accounts.db --mapping accounts.cue --class account rows.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	addStoreFlags(cmd, opts)
	return cmd
}

func runLoad(opts *StoreOptions, rowsFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := loadRows(rowsFile)
	if err != nil {
		return failCommand(formatter, err)
	}

	st, cm, err := openStore(opts)
	if err != nil {
		return failCommand(formatter, err)
	}
	defer st.Close()

	if err := st.CreateSchema(ctx); err != nil {
		return failCommand(formatter, &LoadError{Code: ErrCodeDatabase, Message: err.Error()})
	}

	class := query.ObjectClass(opts.Class)
	for i, row := range rows {
		if err := st.Insert(ctx, class, row); err != nil {
			return failCommand(formatter, &LoadError{
				Code:    ErrCodeDatabase,
				Message: fmt.Sprintf("rows[%d]: %v", i, err),
			})
		}
	}
	formatter.VerboseLog("Inserted %d row(s) into %s", len(rows), cm.Table)

	result := LoadResult{Class: opts.Class, Table: cm.Table, Rows: len(rows)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Loaded %d row(s) into %s\n", result.Rows, result.Table)
	return nil
}
