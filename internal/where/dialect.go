package where

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Dialect selects placeholder style and identifier quoting.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Dialects lists the supported dialects, in help-text order.
var Dialects = []Dialect{SQLite, Postgres, MySQL}

// ParseDialect maps a driver or dialect name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return "", fmt.Errorf("unknown dialect %q: must be one of %v", name, Dialects)
}

// Rebind rewrites "?" placeholders into the dialect's bind syntax.
// Postgres uses $1, $2, ...; SQLite and MySQL keep "?".
// Quoted literals and identifiers are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	offsets := placeholderOffsets(query)
	if len(offsets) == 0 {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 2*len(offsets))
	last := 0
	for n, off := range offsets {
		sb.WriteString(query[last:off])
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n + 1))
		last = off + 1
	}
	sb.WriteString(query[last:])
	return sb.String()
}

// placeholderOffsets returns the byte offsets of the "?" markers in query.
// Marks inside 'literals', "identifiers" and `identifiers` are skipped; a
// doubled quote inside a span closes and reopens it, which keeps the
// scan in step.
func placeholderOffsets(query string) []int {
	var offsets []int
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			offsets = append(offsets, i)
		}
	}
	return offsets
}

// QuoteIdent quotes a table or column name for the dialect.
func (d Dialect) QuoteIdent(name string) string {
	switch d {
	case Postgres:
		return pq.QuoteIdentifier(name)
	case MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}
