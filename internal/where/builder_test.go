package where

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbfilter/internal/ir"
)

func TestBindComparison(t *testing.T) {
	b := Comparison(Param("name", ir.IRString("bob"), Varchar), OpEq)

	assert.Equal(t, "name = ?", b.SQL())
	assert.Equal(t, []any{"bob"}, b.Args())
	assert.Equal(t, 1, b.Placeholders())
	assert.NotContains(t, b.SQL(), "bob") // value NOT in SQL
}

func TestBindNull(t *testing.T) {
	b := Null("status", false)
	assert.Equal(t, "status IS NULL", b.SQL())
	assert.Empty(t, b.Params())
	assert.Nil(t, b.Args())

	b = Null("status", true)
	assert.Equal(t, "status IS NOT NULL", b.SQL())
	assert.Empty(t, b.Params())
}

func TestNegate(t *testing.T) {
	b := Comparison(Param("name", ir.IRString("%bob%"), Varchar), OpLike).Negate()
	assert.Equal(t, "NOT name LIKE ?", b.SQL())
	assert.Equal(t, []any{"%bob%"}, b.Args())

	assert.True(t, Builder{}.Negate().IsEmpty(), "negating nothing stays empty")
}

func TestJoin(t *testing.T) {
	left := Null("status", false)
	right := Comparison(Param("age", ir.IRInt(30), Integer), OpLte)

	b := Join(ConnAnd, left, right)
	assert.Equal(t, "(status IS NULL AND age <= ?)", b.SQL())
	assert.Equal(t, []any{int64(30)}, b.Args())
}

func TestJoinPreservesParamOrder(t *testing.T) {
	a := Comparison(Param("a", ir.IRInt(1), Integer), OpEq)
	bb := Comparison(Param("b", ir.IRInt(2), Integer), OpGt)
	c := Comparison(Param("c", ir.IRString("x"), Varchar), OpLike)

	b := Join(ConnOr, Join(ConnAnd, a, bb), c)
	assert.Equal(t, "((a = ? AND b > ?) OR c LIKE ?)", b.SQL())
	assert.Equal(t, []any{int64(1), int64(2), "x"}, b.Args())
	assert.Equal(t, len(b.Params()), b.Placeholders())
}

func TestPlaceholdersSkipQuotedNames(t *testing.T) {
	for _, d := range Dialects {
		t.Run(string(d), func(t *testing.T) {
			b := Join(ConnAnd,
				Comparison(Param(d.QuoteIdent("a?b"), ir.IRInt(1), Integer), OpEq),
				Null(d.QuoteIdent("why?"), true))
			assert.Equal(t, 1, b.Placeholders())
			assert.Equal(t, len(b.Params()), b.Placeholders())
		})
	}
}

func TestJoinWithEmptySide(t *testing.T) {
	a := Comparison(Param("a", ir.IRInt(1), Integer), OpEq)

	assert.Equal(t, a, Join(ConnAnd, Builder{}, a))
	assert.Equal(t, a, Join(ConnOr, a, Builder{}))
	assert.True(t, Join(ConnAnd, Builder{}, Builder{}).IsEmpty())
}

func TestBuilderImmutable(t *testing.T) {
	left := Comparison(Param("a", ir.IRInt(1), Integer), OpEq)
	right := Comparison(Param("b", ir.IRInt(2), Integer), OpEq)

	joined := Join(ConnAnd, left, right)
	negated := joined.Negate()
	_ = Join(ConnOr, joined, Null("c", false))

	assert.Equal(t, "a = ?", left.SQL())
	assert.Len(t, left.Params(), 1)
	assert.Equal(t, "(a = ? AND b = ?)", joined.SQL())
	assert.Equal(t, "NOT (a = ? AND b = ?)", negated.SQL())

	// Params returns a copy
	params := joined.Params()
	params[0].Name = "mutated"
	assert.Equal(t, "a", joined.Params()[0].Name)
}

func TestNullParamArg(t *testing.T) {
	b := Comparison(Param("x", ir.IRNull{}, Varchar), OpEq)
	assert.Equal(t, []any{nil}, b.Args())
}

func TestOperatorInverse(t *testing.T) {
	tests := []struct {
		op   Operator
		want Operator
	}{
		{OpGt, OpLte},
		{OpGte, OpLt},
		{OpLt, OpGte},
		{OpLte, OpGt},
	}
	for _, tt := range tests {
		got, ok := tt.op.Inverse()
		require.True(t, ok)
		assert.Equal(t, tt.want, got)

		back, _ := got.Inverse()
		assert.Equal(t, tt.op, back, "inverse is an involution")
	}

	_, ok := OpEq.Inverse()
	assert.False(t, ok)
	_, ok = OpLike.Inverse()
	assert.False(t, ok)
}

func TestBuilderString(t *testing.T) {
	b := Comparison(Param("age", ir.IRInt(30), Integer), OpGt)
	assert.Equal(t, "age > ? [age=30 (INTEGER)]", b.String())
	assert.Equal(t, "x IS NULL", Null("x", false).String())
}
