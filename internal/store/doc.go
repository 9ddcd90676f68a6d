// Package store runs filtered attribute searches against SQL tables.
//
// Tables and columns come from a colmap.Mapping. A search translates its
// filter into a WHERE fragment and pushes as much as it can to the
// database:
//
//   - Exact fragment: the database decides membership, and ordering and
//     paging run in SQL (ORDER BY, LIMIT, OFFSET).
//   - Widened or unsupported fragment: the database returns a superset
//     (or the whole table), rows are re-checked with filter.Matches and
//     paged in memory.
//
// # Database Configuration
//
// SQLite (github.com/mattn/go-sqlite3) is the default driver:
//
//   - WAL mode: Concurrent reads during writes
//   - busy_timeout=5000: Wait on lock contention
//   - case_sensitive_like=ON: LIKE agrees with the in-memory evaluator
//
// Postgres and MySQL work through database/sql once their drivers are
// registered; the dialect only changes placeholders and identifier
// quoting.
package store
