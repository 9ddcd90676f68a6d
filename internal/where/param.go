package where

import (
	"fmt"
	"strings"

	"github.com/roach88/dbfilter/internal/ir"
)

// SQLType tags the column type of a bound parameter.
// Drivers use it to pick a wire type; the builder only carries it.
type SQLType int

const (
	Unknown SQLType = iota
	Varchar
	Integer
	Bigint
	Boolean
	Blob
	Timestamp
)

var sqlTypeNames = map[SQLType]string{
	Unknown:   "UNKNOWN",
	Varchar:   "VARCHAR",
	Integer:   "INTEGER",
	Bigint:    "BIGINT",
	Boolean:   "BOOLEAN",
	Blob:      "BLOB",
	Timestamp: "TIMESTAMP",
}

// sqlTypeAliases maps accepted spellings in mapping files to types.
var sqlTypeAliases = map[string]SQLType{
	"":          Unknown,
	"UNKNOWN":   Unknown,
	"VARCHAR":   Varchar,
	"TEXT":      Varchar,
	"STRING":    Varchar,
	"CHAR":      Varchar,
	"INTEGER":   Integer,
	"INT":       Integer,
	"BIGINT":    Bigint,
	"BOOLEAN":   Boolean,
	"BOOL":      Boolean,
	"BLOB":      Blob,
	"BYTEA":     Blob,
	"BINARY":    Blob,
	"VARBINARY": Blob,
	"TIMESTAMP": Timestamp,
	"DATETIME":  Timestamp,
}

func (t SQLType) String() string {
	if name, ok := sqlTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SQLType(%d)", int(t))
}

// ParseSQLType parses a type name such as "varchar", "int", or "blob".
func ParseSQLType(s string) (SQLType, error) {
	t, ok := sqlTypeAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return Unknown, fmt.Errorf("unknown SQL type %q", s)
	}
	return t, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t SQLType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SQLType) UnmarshalText(text []byte) error {
	parsed, err := ParseSQLType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Accepts reports whether a non-NULL value of v's kind can be bound to a
// column of this type. Unknown accepts everything.
func (t SQLType) Accepts(v ir.IRValue) bool {
	_, ok := t.Coerce(v)
	return ok
}

// Coerce returns the value that is bound for v against a column of this
// type. Strings are NFC-normalized and booleans become 0/1 for integer
// columns. ok is false when the column cannot hold v.
//
// Timestamp columns hold their text form only; an integer epoch would
// compare against stored text differently in each database.
func (t SQLType) Coerce(v ir.IRValue) (ir.IRValue, bool) {
	if ir.IsNull(v) {
		return v, true
	}
	switch v := v.(type) {
	case ir.IRString:
		return ir.IRString(ir.NormalizeString(string(v))), t == Unknown || t == Varchar || t == Timestamp
	case ir.IRInt:
		return v, t == Unknown || t == Integer || t == Bigint
	case ir.IRBool:
		switch t {
		case Unknown, Boolean:
			return v, true
		case Integer, Bigint:
			if v {
				return ir.IRInt(1), true
			}
			return ir.IRInt(0), true
		}
		return v, false
	case ir.IRBytes:
		return v, t == Unknown || t == Blob
	}
	return v, false
}

// SQLParam is a resolved column plus the value to bind against it.
// Value may be NULL (nil or ir.IRNull).
type SQLParam struct {
	// Name is the column expression as it appears in SQL text.
	Name  string
	Value ir.IRValue
	Type  SQLType
}

// Param is a shorthand for building an SQLParam.
func Param(name string, value ir.IRValue, typ SQLType) SQLParam {
	return SQLParam{Name: name, Value: value, Type: typ}
}

// IsNull reports whether the parameter's value is NULL.
func (p SQLParam) IsNull() bool {
	return ir.IsNull(p.Value)
}

// WithValue returns a copy of p bound to v.
func (p SQLParam) WithValue(v ir.IRValue) SQLParam {
	p.Value = v
	return p
}

// Arg returns the database/sql driver value for the parameter.
func (p SQLParam) Arg() any {
	return ir.ToDriver(p.Value)
}

func (p SQLParam) String() string {
	data, err := ir.MarshalIRValue(p.Value)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", p.Value))
	}
	return fmt.Sprintf("%s=%s (%s)", p.Name, data, p.Type)
}
