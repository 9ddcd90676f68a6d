package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

// Insert writes one row of attribute values for class.
// Attributes missing from row are stored as NULL. Every attribute in row
// must be mapped and fit its column type.
func (s *Store) Insert(ctx context.Context, class query.ObjectClass, row filter.Row) error {
	cm, ok := s.mapping.Class(class)
	if !ok {
		return fmt.Errorf("insert: %w: %s", ErrUnknownClass, class)
	}
	if len(row) == 0 {
		return fmt.Errorf("insert into %s: empty row", class)
	}

	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]string, len(names))
	marks := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		col, ok := cm.Attributes[name]
		if !ok {
			return fmt.Errorf("insert into %s: %w: %s", class, ErrUnknownAttribute, name)
		}
		value, ok := col.Type.Coerce(row[name])
		if !ok {
			return fmt.Errorf("insert into %s: attribute %s: %s value does not fit %s column",
				class, name, ir.KindOf(row[name]), col.Type)
		}
		columns[i] = s.dialect.QuoteIdent(col.Name)
		marks[i] = where.Placeholder
		args[i] = ir.ToDriver(value)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.QuoteIdent(cm.Table),
		strings.Join(columns, ", "),
		strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(stmt), args...); err != nil {
		return fmt.Errorf("insert into %s: %w", class, err)
	}

	slog.Debug("row inserted", "class", class, "attributes", len(names))
	return nil
}
