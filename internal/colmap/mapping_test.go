package colmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

func TestLoad_CUEAndYAMLAgree(t *testing.T) {
	fromCUE, err := Load("testdata/accounts.cue")
	require.NoError(t, err)
	fromYAML, err := Load("testdata/accounts.yaml")
	require.NoError(t, err)

	assert.Equal(t, fromCUE, fromYAML)
	assert.Equal(t, []query.ObjectClass{"account", "group"}, fromCUE.ClassNames())

	account, ok := fromCUE.Class("account")
	require.True(t, ok)
	assert.Equal(t, "accounts", account.Table)
	assert.Equal(t, "uid", account.Key)
	assert.Equal(t, Column{Name: "user_name", Type: where.Varchar}, account.Attributes["uid"])
	assert.Equal(t, Column{Name: "name", Type: where.Varchar}, account.Attributes["name"])
	assert.Equal(t, Column{Name: "age", Type: where.Integer}, account.Attributes["age"])
	assert.Equal(t, Column{Name: "photo", Type: where.Blob}, account.Attributes["photo"])
	assert.Equal(t, []string{"active", "age", "department", "name", "photo", "uid"}, account.AttributeNames())
}

func TestLoad_DefaultKey(t *testing.T) {
	m, err := Load("testdata/accounts.yaml")
	require.NoError(t, err)

	group, ok := m.Class("group")
	require.True(t, ok)
	assert.Equal(t, "cn", group.Key, "first attribute in name order")
}

func TestLoad_UnknownExtension(t *testing.T) {
	_, err := Load("mapping.json")
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "unsupported mapping file extension")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{"empty", "", "yaml"},
		{"no classes", "classes: {}", "classes"},
		{"unknown field", "classes:\n  a:\n    table: t\n    colour: red\n    attributes: {x: {}}", "yaml"},
		{"missing table", "classes:\n  a:\n    attributes: {x: {}}", "classes.a.table"},
		{"no attributes", "classes:\n  a:\n    table: t", "classes.a.attributes"},
		{"bad type", "classes:\n  a:\n    table: t\n    attributes: {x: {type: decimal}}", "classes.a.attributes.x.type"},
		{"bad key", "classes:\n  a:\n    table: t\n    key: y\n    attributes: {x: {}}", "classes.a.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.input))
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantField, ce.Field)
		})
	}
}

func TestParseYAML_DuplicateColumn(t *testing.T) {
	input := `
classes:
  a:
    table: t
    attributes:
      x: {column: c}
      y: {column: c}
`
	_, err := ParseYAML([]byte(input))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, `column "c" already mapped`)
}

func TestParseCUE_Errors(t *testing.T) {
	t.Run("syntax error has position", func(t *testing.T) {
		_, err := ParseCUE([]byte("classes: {"), "broken.cue")
		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "cue", ce.Field)
		assert.True(t, ce.Pos.IsValid())
	})

	t.Run("incomplete value", func(t *testing.T) {
		_, err := ParseCUE([]byte(`classes: a: {table: string, attributes: x: {}}`), "open.cue")
		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "cue", ce.Field)
	})

	t.Run("validation after decode", func(t *testing.T) {
		_, err := ParseCUE([]byte(`classes: a: {table: "t", attributes: x: {type: "money"}}`), "m.cue")
		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "classes.a.attributes.x.type", ce.Field)
	})
}

func TestMapping_NilClass(t *testing.T) {
	var m *Mapping
	_, ok := m.Class("account")
	assert.False(t, ok)
}
