package testutil

import (
	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

// IdentityColumns resolves every attribute to a column of the same name,
// typed from the value's kind. It never reports an attribute as unmapped.
//
// Wrap it with translate.ResolverFunc.
func IdentityColumns(attr filter.Attribute, _ query.ObjectClass, _ query.Options) (where.SQLParam, bool) {
	return where.Param(attr.Name, attr.Value, typeOf(attr.Value)), true
}

// ColumnMap resolves attributes through a fixed name -> column table.
// Attributes missing from the table are unmapped.
func ColumnMap(columns map[string]string) func(filter.Attribute, query.ObjectClass, query.Options) (where.SQLParam, bool) {
	return func(attr filter.Attribute, _ query.ObjectClass, _ query.Options) (where.SQLParam, bool) {
		col, ok := columns[attr.Name]
		if !ok {
			return where.SQLParam{}, false
		}
		return where.Param(col, attr.Value, typeOf(attr.Value)), true
	}
}

func typeOf(v ir.IRValue) where.SQLType {
	switch v.(type) {
	case ir.IRString:
		return where.Varchar
	case ir.IRInt:
		return where.Bigint
	case ir.IRBool:
		return where.Boolean
	case ir.IRBytes:
		return where.Blob
	}
	return where.Unknown
}
