package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dbfilter/internal/ir"
)

func TestParseYAML(t *testing.T) {
	doc := `
and:
  - equals: {status: null}
  - not:
      greaterThan: {age: 30}
  - contains: {name: bob}
    negated: true
`
	f, err := ParseYAML([]byte(doc))
	require.NoError(t, err)

	want := And{
		Left: And{
			Left:  Equals{Attr: Attr("status", ir.IRNull{})},
			Right: Not{Filter: GreaterThan{Attr: Attr("age", ir.IRInt(30))}},
		},
		Right: Contains{Attr: Attr("name", ir.IRString("bob")), Negated: true},
	}
	assert.Equal(t, want, f)
}

func TestParseJSON(t *testing.T) {
	f, err := ParseYAML([]byte(`{"or": [{"startsWith": {"uid": "adm"}}, {"lessThanOrEqual": {"uidNumber": 1000}}]}`))
	require.NoError(t, err)

	want := Or{
		Left:  StartsWith{Attr: Attr("uid", ir.IRString("adm"))},
		Right: LessThanOrEqual{Attr: Attr("uidNumber", ir.IRInt(1000))},
	}
	assert.Equal(t, want, f)
}

func TestParseYAMLBinary(t *testing.T) {
	f, err := ParseYAML([]byte(`equals: {photo: {$binary: "AQI="}}`))
	require.NoError(t, err)
	assert.Equal(t, Equals{Attr: Attr("photo", ir.IRBytes{0x01, 0x02})}, f)
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"empty", ``, "empty filter"},
		{"scalar", `42`, "expected a mapping"},
		{"unknown operator", `like: {name: bob}`, `unknown operator "like"`},
		{"two operators", `{equals: {a: 1}, contains: {b: x}}`, "exactly one operator"},
		{"and needs list", `and: {equals: {a: 1}}`, "expected a list"},
		{"and needs two", `and: [{equals: {a: 1}}]`, "at least two children"},
		{"leaf two attributes", `equals: {a: 1, b: 2}`, "exactly one attribute"},
		{"float value", `greaterThan: {score: 1.5}`, "floats are not allowed"},
		{"negated not bool", `{equals: {a: 1}, negated: "yes"}`, "must be a bool"},
		{"negated on and", `{and: [{equals: {a: 1}}, {equals: {b: 2}}], negated: true}`, "wrap in not"},
		{"nested path", `or: [{equals: {a: 1}}, {not: {nope: {a: 1}}}]`, "or[1].not"},
		{"invalid yaml", `and: [`, "parse filter document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeNode(t *testing.T) {
	var wrapper struct {
		Filter yaml.Node `yaml:"filter"`
	}
	err := yaml.Unmarshal([]byte("filter:\n  endsWith: {mail: \"@example.com\"}\n"), &wrapper)
	require.NoError(t, err)

	f, err := DecodeNode(&wrapper.Filter)
	require.NoError(t, err)
	assert.Equal(t, EndsWith{Attr: Attr("mail", ir.IRString("@example.com"))}, f)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "f.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("equals: {uid: bob}\n"), 0o644))

	f, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, Equals{Attr: Attr("uid", ir.IRString("bob"))}, f)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
