package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/store"
	"github.com/roach88/dbfilter/internal/testutil"
	"github.com/roach88/dbfilter/internal/translate"
	"github.com/roach88/dbfilter/internal/where"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the column mapping and decode the filter
//  2. Translate the filter for the scenario's class and dialect
//  3. If rows are given, seed a fresh in-memory SQLite database and search
//  4. Evaluate assertions
//
// Each scenario with rows runs in its own database for isolation. Search
// request ids are fixed to the scenario name.
//
// An error is returned when the scenario cannot run at all; failed
// assertions are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	mapping, err := colmap.Load(scenario.Mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	return RunWithMapping(scenario, mapping)
}

// RunWithMapping executes a scenario against an already loaded mapping;
// scenario.Mapping is ignored.
func RunWithMapping(scenario *Scenario, mapping *colmap.Mapping) (*Result, error) {
	f, err := filter.DecodeNode(&scenario.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to decode filter: %w", err)
	}

	var dialect where.Dialect
	if scenario.Dialect != "" {
		if dialect, err = where.ParseDialect(string(scenario.Dialect)); err != nil {
			return nil, err
		}
	}

	resolver := colmap.NewResolver(mapping, dialect)
	tr, err := translate.New(scenario.Class, scenario.Options, resolver).Translate(f)
	if err != nil {
		return nil, fmt.Errorf("failed to translate filter: %w", err)
	}

	result := NewResult()
	result.Translation = tr.Document()
	if tr.Supported() {
		result.Translation["where"] = dialect.Rebind(tr.SQL())
	}

	if len(scenario.Rows) > 0 {
		if err := search(scenario, mapping, f, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, tr, scenario.Assertions) {
		result.AddError(msg)
	}

	slog.Debug("scenario finished", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

// search seeds an in-memory database with the scenario rows and runs f.
func search(scenario *Scenario, mapping *colmap.Mapping, f filter.Filter, result *Result) error {
	ctx := context.Background()

	st, err := store.Open("sqlite3", ":memory:", mapping,
		store.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)))
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.CreateSchema(ctx); err != nil {
		return err
	}
	for i, raw := range scenario.Rows {
		row, err := ConvertRow(raw)
		if err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
		if err := st.Insert(ctx, scenario.Class, row); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
	}

	res, err := st.Search(ctx, scenario.Class, f, scenario.Options)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	cm, _ := mapping.Class(scenario.Class)
	result.Keys = make([]string, len(res.Rows))
	for i, row := range res.Rows {
		result.Keys[i] = keyString(row[cm.Key])
	}
	result.PostFiltered = res.PostFiltered
	return nil
}

// ConvertRow converts YAML-decoded attribute values into a filter.Row.
func ConvertRow(raw map[string]any) (filter.Row, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	row := make(filter.Row, len(raw))
	for _, name := range names {
		v, err := ir.FromAny(raw[name])
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		row[name] = v
	}
	return row, nil
}

// keyString renders a key value for result_keys comparison.
func keyString(v ir.IRValue) string {
	if s, ok := v.(ir.IRString); ok {
		return string(s)
	}
	data, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
