package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbfilter/internal/ir"
)

func TestFilterSealed(t *testing.T) {
	// Verify all types implement Filter (compile-time check via assignment)
	var _ Filter = And{}
	var _ Filter = Or{}
	var _ Filter = Not{}
	var _ Leaf = Equals{}
	var _ Leaf = Contains{}
	var _ Leaf = StartsWith{}
	var _ Leaf = EndsWith{}
	var _ Leaf = GreaterThan{}
	var _ Leaf = GreaterThanOrEqual{}
	var _ Leaf = LessThan{}
	var _ Leaf = LessThanOrEqual{}
	var _ Filter = &Equals{}
}

func TestNewLeafAllKinds(t *testing.T) {
	attr := Attr("age", ir.IRInt(30))
	kinds := []Kind{
		KindEquals, KindContains, KindStartsWith, KindEndsWith,
		KindGreaterThan, KindGreaterThanOrEqual, KindLessThan, KindLessThanOrEqual,
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			leaf, err := NewLeaf(kind, attr, true)
			require.NoError(t, err)
			assert.Equal(t, kind, leaf.Kind())
			assert.Equal(t, attr, leaf.Attribute())
			assert.True(t, leaf.IsNegated())
			assert.False(t, leaf.WithNegated(false).IsNegated())
			// WithNegated returns a copy
			assert.True(t, leaf.IsNegated())

			changed := leaf.WithValue(ir.IRInt(31))
			assert.Equal(t, Attr("age", ir.IRInt(31)), changed.Attribute())
			assert.True(t, changed.IsNegated())
			assert.Equal(t, attr, leaf.Attribute())
		})
	}
}

func TestNewLeafRejectsCombinators(t *testing.T) {
	for _, kind := range []Kind{KindAnd, KindOr, KindNot} {
		_, err := NewLeaf(kind, Attr("a", nil), false)
		assert.Error(t, err, kind.String())
	}
}

func TestAndAllOrAll(t *testing.T) {
	a := Equals{Attr: Attr("a", ir.IRInt(1))}
	b := Equals{Attr: Attr("b", ir.IRInt(2))}
	c := Equals{Attr: Attr("c", ir.IRInt(3))}

	assert.Nil(t, AndAll())
	assert.Equal(t, a, AndAll(a))
	assert.Equal(t, And{Left: And{Left: a, Right: b}, Right: c}, AndAll(a, b, c))
	assert.Equal(t, Or{Left: Or{Left: a, Right: b}, Right: c}, OrAll(a, b, c))
}

func TestDeref(t *testing.T) {
	eq := Equals{Attr: Attr("a", ir.IRInt(1))}
	assert.Equal(t, eq, Deref(&eq))
	assert.Equal(t, eq, Deref(eq))

	var nilEq *Equals
	assert.Nil(t, Deref(nilEq))

	and := And{Left: eq, Right: eq}
	assert.Equal(t, and, Deref(&and))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "greaterThanOrEqual", KindGreaterThanOrEqual.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestString(t *testing.T) {
	f := And{
		Left:  Equals{Attr: Attr("status", nil)},
		Right: Not{Filter: GreaterThan{Attr: Attr("age", ir.IRInt(30)), Negated: true}},
	}
	assert.Equal(t, `(status equals null AND NOT (NOT age greaterThan 30))`, String(f))
	assert.Equal(t, "<nil>", String(nil))
}
