package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/translate"
	"github.com/roach88/dbfilter/internal/where"
)

var (
	// ErrUnknownClass is returned for object classes missing from the mapping.
	ErrUnknownClass = errors.New("unknown object class")
	// ErrUnknownAttribute is returned for attributes missing from the mapping.
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// SearchResult is the outcome of one Search.
type SearchResult struct {
	// RequestID identifies the search in log records.
	RequestID string
	// Rows are the matching objects, projected to Options.AttributesToGet
	// plus the class key.
	Rows []filter.Row
	// Where is the pushed-down predicate ("" when nothing was pushed).
	Where string
	// Args are the bind values of Where.
	Args []any
	// Exact is true when the database alone decided membership.
	Exact bool
	// PostFiltered is true when rows were re-checked in memory.
	PostFiltered bool
}

// Search returns the objects of class matching f, ordered and paged by opts.
// A nil filter matches every object.
//
// The filter is translated against the store's mapping. When the pushed
// predicate is exact, paging runs in SQL. Otherwise the widened (or empty)
// predicate fetches a superset, which is filtered with filter.Matches and
// paged in memory. The in-memory check sees the same coerced values the
// database compared.
func (s *Store) Search(ctx context.Context, class query.ObjectClass, f filter.Filter, opts query.Options) (*SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	cm, ok := s.mapping.Class(class)
	if !ok {
		return nil, fmt.Errorf("search: %w: %s", ErrUnknownClass, class)
	}

	result := &SearchResult{RequestID: s.ids.Generate(), Exact: true}
	log := slog.With("request_id", result.RequestID, "class", class)

	var pushed where.Builder
	if f != nil {
		res, err := translate.New(class, opts, s.resolver).Translate(f)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		pushed, _ = res.Builder()
		result.Exact = res.Exact()
		result.PostFiltered = !res.Exact()
	}
	result.Where = pushed.SQL()
	result.Args = pushed.Args()

	stmt, args, err := s.selectSQL(cm, pushed, opts, result.Exact)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	log.Debug("search query", "sql", stmt, "exact", result.Exact)

	rows, err := s.queryRows(ctx, cm, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", class, err)
	}
	fetched := len(rows)

	if result.PostFiltered {
		bound := s.resolver.BindFilter(class, f)
		kept := rows[:0]
		for _, row := range rows {
			if filter.Matches(bound, row) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	if !pagedInSQL(result.Exact, opts) {
		rows = page(rows, opts)
	}

	result.Rows = make([]filter.Row, len(rows))
	for i, row := range rows {
		result.Rows[i] = project(row, cm.Key, opts)
	}

	log.Info("search completed",
		"fetched", fetched,
		"returned", len(result.Rows),
		"post_filtered", result.PostFiltered)
	return result, nil
}

// selectSQL builds the statement for a search. Paging is pushed down only
// when exact is set; a widened predicate would page over the wrong rows.
func (s *Store) selectSQL(cm colmap.ClassMapping, pushed where.Builder, opts query.Options, exact bool) (string, []any, error) {
	q := s.dialect.QuoteIdent

	attrs := cm.AttributeNames()
	cols := make([]string, len(attrs))
	for i, attr := range attrs {
		cols[i] = q(cm.Attributes[attr].Name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(cols, ", "), q(cm.Table))
	args := pushed.Args()
	if !pushed.IsEmpty() {
		sb.WriteString(" WHERE " + pushed.SQL())
	}

	sortAttr := cm.Key
	if opts.SortBy != "" {
		if _, ok := cm.Attributes[opts.SortBy]; !ok {
			return "", nil, fmt.Errorf("sort by %s: %w", opts.SortBy, ErrUnknownAttribute)
		}
		sortAttr = opts.SortBy
	}
	dir := "ASC"
	if opts.SortDescending {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", q(cm.Attributes[sortAttr].Name), dir)
	if sortAttr != cm.Key {
		// Ties are broken by key so pages are stable.
		fmt.Fprintf(&sb, ", %s ASC", q(cm.Attributes[cm.Key].Name))
	}

	if pagedInSQL(exact, opts) {
		sb.WriteString(" LIMIT " + where.Placeholder)
		args = append(args, opts.PageSize)
		if opts.PagedResultsOffset > 0 {
			sb.WriteString(" OFFSET " + where.Placeholder)
			args = append(args, opts.PagedResultsOffset)
		}
	}

	return s.dialect.Rebind(sb.String()), args, nil
}

// queryRows runs stmt and decodes every row keyed by attribute name.
func (s *Store) queryRows(ctx context.Context, cm colmap.ClassMapping, stmt string, args []any) ([]filter.Row, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	attrs := cm.AttributeNames()
	var out []filter.Row
	for rows.Next() {
		raw := make([]any, len(attrs))
		dest := make([]any, len(attrs))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(filter.Row, len(attrs))
		for i, attr := range attrs {
			v, err := unmarshalColumn(cm.Attributes[attr], raw[i])
			if err != nil {
				return nil, err
			}
			row[attr] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []filter.Row{}
	}
	return out, nil
}

// pagedInSQL reports whether LIMIT/OFFSET go into the statement.
// Offset alone stays in memory since not every dialect accepts OFFSET
// without LIMIT.
func pagedInSQL(exact bool, opts query.Options) bool {
	return exact && opts.PageSize > 0
}

// page applies offset and page size to rows already in order.
func page(rows []filter.Row, opts query.Options) []filter.Row {
	if opts.PagedResultsOffset >= len(rows) {
		return rows[:0]
	}
	rows = rows[opts.PagedResultsOffset:]
	if opts.PageSize > 0 && opts.PageSize < len(rows) {
		rows = rows[:opts.PageSize]
	}
	return rows
}

// project keeps the requested attributes and the key.
func project(row filter.Row, key string, opts query.Options) filter.Row {
	if len(opts.AttributesToGet) == 0 {
		return row
	}
	out := make(filter.Row, len(opts.AttributesToGet)+1)
	for name, v := range row {
		if name == key || opts.Wants(name) {
			out[name] = v
		}
	}
	return out
}
