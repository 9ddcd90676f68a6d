package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbfilter/internal/ir"
)

func TestValidate_WellFormed(t *testing.T) {
	f := Or{
		Left:  Equals{Attr: Attr("status", nil)},
		Right: Not{Filter: Contains{Attr: Attr("name", ir.IRString("bob"))}},
	}
	assert.NoError(t, Validate(f))
}

func TestValidate_NullValuesAreWellFormed(t *testing.T) {
	// NULL on a relational operator is unsupported, not malformed.
	assert.NoError(t, Validate(GreaterThan{Attr: Attr("age", nil)}))
}

func TestValidate_Malformed(t *testing.T) {
	var nilContains *Contains

	tests := []struct {
		name     string
		filter   Filter
		wantPath string
	}{
		{"nil root", nil, ""},
		{"typed nil pointer", nilContains, ""},
		{"nil and left", And{Right: Equals{Attr: Attr("a", nil)}}, "and.left"},
		{"nil or right", Or{Left: Equals{Attr: Attr("a", nil)}}, "or.right"},
		{"nil not child", Not{}, "not"},
		{"empty attribute name", And{
			Left:  Equals{Attr: Attr("a", nil)},
			Right: LessThan{Attr: Attr("  ", ir.IRInt(1))},
		}, "and.right.lessThan"},
		{"nested", Not{Filter: Or{Left: And{Left: Equals{Attr: Attr("a", nil)}}}}, "not.or.left.and.right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.filter)
			require.Error(t, err)

			var malformed *MalformedError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.wantPath, malformed.Path)
		})
	}
}

func TestWalkOrder(t *testing.T) {
	a := Equals{Attr: Attr("a", ir.IRInt(1))}
	b := Equals{Attr: Attr("b", ir.IRInt(2))}
	c := Equals{Attr: Attr("c", ir.IRInt(3))}
	f := Or{Left: And{Left: a, Right: b}, Right: Not{Filter: c}}

	var kinds []Kind
	Walk(f, func(n Filter) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []Kind{KindOr, KindAnd, KindEquals, KindEquals, KindNot, KindEquals}, kinds)
}

func TestWalkStopsEarly(t *testing.T) {
	f := AndAll(
		Equals{Attr: Attr("a", nil)},
		Equals{Attr: Attr("b", nil)},
		Equals{Attr: Attr("c", nil)},
	)
	visited := 0
	Walk(f, func(n Filter) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}

func TestAttributeNames(t *testing.T) {
	f := AndAll(
		Equals{Attr: Attr("uid", ir.IRString("x"))},
		Contains{Attr: Attr("mail", ir.IRString("y"))},
		Not{Filter: Equals{Attr: Attr("uid", nil)}},
	)
	assert.Equal(t, []string{"uid", "mail"}, AttributeNames(f))
}

func TestMapLeaves(t *testing.T) {
	f := And{
		Left:  &Equals{Attr: Attr("uid", ir.IRString("a"))},
		Right: Not{Filter: Or{
			Left:  GreaterThan{Attr: Attr("age", ir.IRInt(30)), Negated: true},
			Right: StartsWith{Attr: Attr("uid", ir.IRString("b"))},
		}},
	}

	got := MapLeaves(f, func(leaf Leaf) Leaf {
		if leaf.Attribute().Name != "uid" {
			return leaf
		}
		return leaf.WithValue(ir.IRString("x"))
	})

	assert.Equal(t, And{
		Left:  Equals{Attr: Attr("uid", ir.IRString("x"))},
		Right: Not{Filter: Or{
			Left:  GreaterThan{Attr: Attr("age", ir.IRInt(30)), Negated: true},
			Right: StartsWith{Attr: Attr("uid", ir.IRString("x"))},
		}},
	}, got)
	assert.Equal(t, ir.IRString("a"), f.Left.(*Equals).Attr.Value, "input is not modified")
	assert.Nil(t, MapLeaves(nil, func(leaf Leaf) Leaf { return leaf }))
}
