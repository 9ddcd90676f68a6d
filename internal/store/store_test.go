package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/testutil"
)

const accountsMapping = `
classes:
  account:
    table: accounts
    key: uid
    attributes:
      uid: {column: user_name, type: varchar}
      name: {type: varchar}
      department: {type: varchar}
      age: {type: integer}
      active: {type: boolean}
      photo: {type: blob}
`

func testMapping(t *testing.T) *colmap.Mapping {
	t.Helper()
	m, err := colmap.ParseYAML([]byte(accountsMapping))
	require.NoError(t, err)
	return m
}

// createTestStore opens a SQLite store in a temp dir with the accounts
// table created and seeded.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open("sqlite3", path, testMapping(t), WithIDGenerator(testutil.NewFixedIDGenerator("req-1")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.CreateSchema(ctx))
	for _, row := range seedRows() {
		require.NoError(t, s.Insert(ctx, "account", row))
	}
	return s
}

func seedRows() []filter.Row {
	return []filter.Row{
		{"uid": ir.IRString("adm1"), "name": ir.IRString("Alice"), "department": ir.IRString("it"), "age": ir.IRInt(41), "active": ir.IRBool(true), "photo": ir.IRBytes{1}},
		{"uid": ir.IRString("adm2"), "name": ir.IRString("Bob"), "department": nil, "age": ir.IRInt(29), "active": ir.IRBool(false)},
		{"uid": ir.IRString("bob"), "name": ir.IRString("Bob"), "department": ir.IRString("sales"), "age": ir.IRInt(35), "active": ir.IRBool(true), "photo": ir.IRBytes{2}},
		{"uid": ir.IRString("carol"), "name": ir.IRString("Carol"), "department": ir.IRNull{}, "age": ir.IRInt(52), "active": ir.IRBool(true)},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open("sqlite3", path, testMapping(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_Errors(t *testing.T) {
	m := testMapping(t)

	_, err := Open("oracle", "x", m)
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = Open("mysql", "not a dsn", m)
	assert.ErrorContains(t, err, "invalid mysql dsn")

	_, err = Open("sqlite3", ":memory:", nil)
	assert.ErrorContains(t, err, "no column mapping")
}

func TestCreateSchema_Idempotent(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.CreateSchema(context.Background()))

	var count int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count))
	assert.Equal(t, 4, count)
}

func TestInsert_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Insert(ctx, "printer", filter.Row{"uid": ir.IRString("x")})
	assert.ErrorIs(t, err, ErrUnknownClass)

	err = s.Insert(ctx, "account", filter.Row{"uid": ir.IRString("x"), "nickname": ir.IRString("y")})
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	err = s.Insert(ctx, "account", filter.Row{"uid": ir.IRString("x"), "age": ir.IRString("old")})
	assert.ErrorContains(t, err, "string value does not fit INTEGER column")

	err = s.Insert(ctx, "account", filter.Row{})
	assert.ErrorContains(t, err, "empty row")

	err = s.Insert(ctx, "account", filter.Row{"uid": ir.IRString("adm1")})
	assert.Error(t, err, "duplicate key")
}

func TestInsert_NormalizesStrings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "account", filter.Row{"uid": ir.IRString("jose"), "name": ir.IRString("Jose\u0301")}))

	res, err := s.Search(ctx, "account", filter.Equals{Attr: filter.Attr("name", ir.IRString("Jos\u00e9"))}, query.Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, ir.IRString("jose"), res.Rows[0]["uid"])
}
