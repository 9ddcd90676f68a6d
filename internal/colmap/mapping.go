package colmap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dbfilter/internal/query"
	"github.com/roach88/dbfilter/internal/where"
)

// Mapping describes how each object class is stored.
type Mapping struct {
	Classes map[query.ObjectClass]ClassMapping
}

// ClassMapping is the table backing one object class.
type ClassMapping struct {
	Table string
	// Key is the attribute that identifies a row. Defaults to the first
	// attribute in name order.
	Key        string
	Attributes map[string]Column
}

// Column is the physical column behind an attribute.
type Column struct {
	Name string
	Type where.SQLType
}

// ConfigError reports an invalid mapping document.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// document is the on-disk shape shared by the CUE and YAML loaders:
//
//	classes: account: {
//		table: "accounts"
//		key:   "uid"
//		attributes: {
//			uid: {column: "user_name", type: "varchar"}
//			age: {type: "integer"}
//		}
//	}
type document struct {
	Classes map[string]classDocument `json:"classes" yaml:"classes"`
}

type classDocument struct {
	Table      string                    `json:"table" yaml:"table"`
	Key        string                    `json:"key,omitempty" yaml:"key,omitempty"`
	Attributes map[string]columnDocument `json:"attributes" yaml:"attributes"`
}

type columnDocument struct {
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Load reads a mapping from a .cue, .yaml or .yml file.
func Load(path string) (*Mapping, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return LoadCUE(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	}
	return nil, &ConfigError{Message: fmt.Sprintf("unsupported mapping file extension: %s", path)}
}

// LoadCUE reads a CUE mapping file. The file must evaluate to a concrete
// value.
func LoadCUE(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return ParseCUE(data, path)
}

// ParseCUE compiles CUE source into a Mapping. filename is used in error
// positions only.
func ParseCUE(data []byte, filename string) (*Mapping, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc document
	if err := v.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return doc.build()
}

// LoadYAML reads a YAML mapping file.
func LoadYAML(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes YAML source into a Mapping. Unknown fields are errors.
func ParseYAML(data []byte) (*Mapping, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, &ConfigError{Field: "yaml", Message: "empty mapping document"}
		}
		return nil, &ConfigError{Field: "yaml", Message: err.Error()}
	}
	return doc.build()
}

func (d document) build() (*Mapping, error) {
	if len(d.Classes) == 0 {
		return nil, &ConfigError{Field: "classes", Message: "at least one class is required"}
	}

	m := &Mapping{Classes: make(map[query.ObjectClass]ClassMapping, len(d.Classes))}
	for name, cd := range d.Classes {
		field := "classes." + name
		if cd.Table == "" {
			return nil, &ConfigError{Field: field + ".table", Message: "table is required"}
		}
		if len(cd.Attributes) == 0 {
			return nil, &ConfigError{Field: field + ".attributes", Message: "at least one attribute is required"}
		}

		cm := ClassMapping{
			Table:      cd.Table,
			Key:        cd.Key,
			Attributes: make(map[string]Column, len(cd.Attributes)),
		}
		columns := make(map[string]string, len(cd.Attributes))
		for attr, col := range cd.Attributes {
			typ, err := where.ParseSQLType(col.Type)
			if err != nil {
				return nil, &ConfigError{Field: field + ".attributes." + attr + ".type", Message: err.Error()}
			}
			colName := col.Column
			if colName == "" {
				colName = attr
			}
			if other, dup := columns[colName]; dup {
				return nil, &ConfigError{
					Field:   field + ".attributes." + attr,
					Message: fmt.Sprintf("column %q already mapped by attribute %q", colName, other),
				}
			}
			columns[colName] = attr
			cm.Attributes[attr] = Column{Name: colName, Type: typ}
		}

		if cm.Key == "" {
			cm.Key = cm.AttributeNames()[0]
		} else if _, ok := cm.Attributes[cm.Key]; !ok {
			return nil, &ConfigError{Field: field + ".key", Message: fmt.Sprintf("key %q is not a mapped attribute", cm.Key)}
		}
		m.Classes[query.ObjectClass(name)] = cm
	}
	return m, nil
}

// Class returns the mapping for class.
func (m *Mapping) Class(class query.ObjectClass) (ClassMapping, bool) {
	if m == nil {
		return ClassMapping{}, false
	}
	cm, ok := m.Classes[class]
	return cm, ok
}

// ClassNames returns the mapped classes in sorted order.
func (m *Mapping) ClassNames() []query.ObjectClass {
	names := make([]query.ObjectClass, 0, len(m.Classes))
	for name := range m.Classes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// AttributeNames returns the mapped attributes in sorted order.
func (c ClassMapping) AttributeNames() []string {
	names := make([]string, 0, len(c.Attributes))
	for name := range c.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatCUEError keeps the first positioned error, like the CUE CLI does.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	ce := &ConfigError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
