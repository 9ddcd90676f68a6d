package colmap

import (
	"log/slog"

	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

// Resolver resolves filter attributes through a Mapping.
// It implements translate.ColumnResolver and is safe for concurrent use.
type Resolver struct {
	mapping *Mapping
	dialect where.Dialect
}

// NewResolver returns a Resolver over m. When dialect is non-empty,
// column names are quoted for it.
func NewResolver(m *Mapping, dialect where.Dialect) *Resolver {
	return &Resolver{mapping: m, dialect: dialect}
}

// ResolveColumn maps attr to its column for class. It fails for unknown
// classes and attributes, and for values the column type cannot hold.
func (r *Resolver) ResolveColumn(attr filter.Attribute, class query.ObjectClass, _ query.Options) (where.SQLParam, bool) {
	col, ok := r.Column(class, attr.Name)
	if !ok {
		slog.Debug("attribute not mapped", "class", class, "attribute", attr.Name)
		return where.SQLParam{}, false
	}

	value, ok := col.Type.Coerce(attr.Value)
	if !ok {
		slog.Debug("value does not fit column type",
			"class", class,
			"attribute", attr.Name,
			"kind", ir.KindOf(attr.Value),
			"type", col.Type.String())
		return where.SQLParam{}, false
	}

	return where.Param(r.quote(col.Name), value, col.Type), true
}

// BindFilter returns f with every leaf value replaced by the value
// ResolveColumn binds for it, so an in-memory evaluation sees what the
// database compared. Leaves that cannot be resolved keep their value.
func (r *Resolver) BindFilter(class query.ObjectClass, f filter.Filter) filter.Filter {
	return filter.MapLeaves(f, func(leaf filter.Leaf) filter.Leaf {
		attr := leaf.Attribute()
		col, ok := r.Column(class, attr.Name)
		if !ok {
			return leaf
		}
		value, ok := col.Type.Coerce(attr.Value)
		if !ok {
			return leaf
		}
		return leaf.WithValue(value)
	})
}

// Column returns the unquoted column behind attribute name.
func (r *Resolver) Column(class query.ObjectClass, name string) (Column, bool) {
	cm, ok := r.mapping.Class(class)
	if !ok {
		return Column{}, false
	}
	col, ok := cm.Attributes[name]
	return col, ok
}

func (r *Resolver) quote(name string) string {
	if r.dialect == "" {
		return name
	}
	return r.dialect.QuoteIdent(name)
}
