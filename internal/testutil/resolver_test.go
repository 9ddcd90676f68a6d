package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

func TestIdentityColumns(t *testing.T) {
	tests := []struct {
		value ir.IRValue
		want  where.SQLType
	}{
		{ir.IRString("x"), where.Varchar},
		{ir.IRInt(3), where.Bigint},
		{ir.IRBool(true), where.Boolean},
		{ir.IRBytes{1}, where.Blob},
		{ir.IRNull{}, where.Unknown},
		{nil, where.Unknown},
	}

	for _, tt := range tests {
		p, ok := IdentityColumns(filter.Attr("col", tt.value), "account", query.Options{})
		assert.True(t, ok)
		assert.Equal(t, where.Param("col", tt.value, tt.want), p)
	}
}

func TestColumnMap(t *testing.T) {
	resolve := ColumnMap(map[string]string{"uid": "user_name"})

	p, ok := resolve(filter.Attr("uid", ir.IRString("bob")), "account", query.Options{})
	assert.True(t, ok)
	assert.Equal(t, "user_name", p.Name)

	_, ok = resolve(filter.Attr("mail", ir.IRString("x")), "account", query.Options{})
	assert.False(t, ok)
}

func TestFixedIDGenerator(t *testing.T) {
	assert.Equal(t, "req-1", NewFixedIDGenerator("req-1").Generate())
	assert.Equal(t, "test-request-default", NewFixedIDGenerator("").Generate())
}
