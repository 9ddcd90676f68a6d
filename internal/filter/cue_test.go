package filter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbfilter/internal/ir"
)

func TestParseCUE(t *testing.T) {
	src := `
and: [
	{equals: status: null},
	{not: greaterThan: age: 30},
]
`
	f, err := ParseCUE([]byte(src), "filter.cue")
	require.NoError(t, err)

	want := And{
		Left:  Equals{Attr: Attr("status", ir.IRNull{})},
		Right: Not{Filter: GreaterThan{Attr: Attr("age", ir.IRInt(30))}},
	}
	assert.Equal(t, want, f)
}

func TestParseCUEReferences(t *testing.T) {
	src := `
#admins: startsWith: uid: "adm"
or: [#admins, {equals: {uid: "root", negated: false}}]
`
	// negated inside the attribute map is an attribute, not the flag
	_, err := ParseCUE([]byte(src), "filter.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one attribute")

	src = `
#admins: startsWith: uid: "adm"
or: [#admins, {equals: uid: "root", negated: true}]
`
	f, err := ParseCUE([]byte(src), "filter.cue")
	require.NoError(t, err)
	assert.Equal(t, Or{
		Left:  StartsWith{Attr: Attr("uid", ir.IRString("adm"))},
		Right: Equals{Attr: Attr("uid", ir.IRString("root")), Negated: true},
	}, f)
}

func TestParseCUEErrors(t *testing.T) {
	_, err := ParseCUE([]byte(`equals: uid: string`), "filter.cue")
	require.Error(t, err, "non-concrete values are rejected")

	_, err = ParseCUE([]byte(`equals: {`), "filter.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cue:")
}

func TestLoadFileCUE(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "admins.cue"))
	require.NoError(t, err)
	assert.Equal(t, Or{
		Left:  StartsWith{Attr: Attr("uid", ir.IRString("adm"))},
		Right: Equals{Attr: Attr("department", ir.IRNull{}), Negated: true},
	}, f)
}
