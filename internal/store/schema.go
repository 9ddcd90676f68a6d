package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/where"
)

// CreateSchema creates a table for every mapped class.
// This function is idempotent.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, class := range s.mapping.ClassNames() {
		cm, _ := s.mapping.Class(class)
		if _, err := s.db.ExecContext(ctx, createTableSQL(s.dialect, cm)); err != nil {
			return fmt.Errorf("create table for class %s: %w", class, err)
		}
	}
	return nil
}

// createTableSQL renders the DDL for one class. Columns follow attribute
// name order; the key attribute is the primary key.
func createTableSQL(d where.Dialect, cm colmap.ClassMapping) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (", d.QuoteIdent(cm.Table))
	for i, attr := range cm.AttributeNames() {
		col := cm.Attributes[attr]
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.QuoteIdent(col.Name))
		if typ := columnType(d, col.Type); typ != "" {
			sb.WriteString(" " + typ)
		}
	}
	fmt.Fprintf(&sb, ", PRIMARY KEY (%s))", d.QuoteIdent(cm.Attributes[cm.Key].Name))
	return sb.String()
}

// columnType maps a bind type to a column type the dialect understands.
func columnType(d where.Dialect, t where.SQLType) string {
	switch t {
	case where.Varchar:
		if d == where.MySQL {
			// MySQL cannot index unbounded TEXT.
			return "VARCHAR(255)"
		}
		return "TEXT"
	case where.Integer:
		return "INTEGER"
	case where.Bigint:
		return "BIGINT"
	case where.Boolean:
		return "BOOLEAN"
	case where.Blob:
		if d == where.Postgres {
			return "BYTEA"
		}
		return "BLOB"
	case where.Timestamp:
		return "TIMESTAMP"
	}
	if d == where.SQLite {
		return ""
	}
	return "TEXT"
}
