package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/filter"
	"github.com/roach88/dbfilter/internal/harness"
	"github.com/roach88/dbfilter/internal/query"
)

// LoadError represents an error that occurred while loading a command
// input (filter, mapping, rows).
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No scenario files found
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDatabase    = "E008" // Database open/query error

	// Input errors
	ErrCodeFilterDecode    = "E101" // Filter document cannot be decoded
	ErrCodeFilterMalformed = "E102" // Filter tree is malformed
	ErrCodeMappingInvalid  = "E103" // Column mapping is invalid
	ErrCodeUnknownClass    = "E104" // Class missing from mapping
	ErrCodeInvalidOptions  = "E106" // Search options rejected
	ErrCodeRowsInvalid     = "E107" // Rows document is invalid
	ErrCodeUnmappedAttr    = "E108" // Filter attribute missing from mapping

	// Translation outcomes
	ErrCodeUnsupported = "E105" // Filter cannot be pushed down to SQL
)

// loadFilter reads, decodes, and validates a filter document.
func loadFilter(path string) (filter.Filter, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("filter file not found: %s", path)}
	}

	f, err := filter.LoadFile(path)
	if err != nil {
		return nil, filterLoadError(err)
	}
	if err := filter.Validate(f); err != nil {
		return nil, filterLoadError(err)
	}
	return f, nil
}

func filterLoadError(err error) *LoadError {
	var malformed *filter.MalformedError
	if errors.As(err, &malformed) {
		return &LoadError{Code: ErrCodeFilterMalformed, Message: malformed.Error()}
	}
	return &LoadError{Code: ErrCodeFilterDecode, Message: err.Error()}
}

// loadMapping reads a CUE or YAML column mapping.
func loadMapping(path string) (*colmap.Mapping, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("mapping file not found: %s", path)}
	}

	m, err := colmap.Load(path)
	if err != nil {
		var cfgErr *colmap.ConfigError
		if errors.As(err, &cfgErr) {
			msg := cfgErr.Message
			if cfgErr.Field != "" {
				msg = cfgErr.Field + ": " + msg
			}
			return nil, &LoadError{Code: ErrCodeMappingInvalid, Message: msg, Pos: cfgErr.Pos}
		}
		return nil, &LoadError{Code: ErrCodeMappingInvalid, Message: err.Error()}
	}
	return m, nil
}

// lookupClass returns the mapping for class or an E104 error listing the
// classes that are mapped.
func lookupClass(m *colmap.Mapping, class string) (colmap.ClassMapping, error) {
	cm, ok := m.Class(query.ObjectClass(class))
	if !ok {
		return colmap.ClassMapping{}, &LoadError{
			Code:    ErrCodeUnknownClass,
			Message: fmt.Sprintf("unknown class %q: mapping defines %v", class, m.ClassNames()),
		}
	}
	return cm, nil
}

// loadRows reads a YAML (or JSON) list of objects keyed by attribute name.
func loadRows(path string) ([]filter.Row, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rows file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("read rows file: %v", err)}
	}

	var docs []map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, &LoadError{Code: ErrCodeRowsInvalid, Message: fmt.Sprintf("parse rows file: %v", err)}
	}

	rows := make([]filter.Row, 0, len(docs))
	for i, doc := range docs {
		row, err := harness.ConvertRow(doc)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeRowsInvalid, Message: fmt.Sprintf("rows[%d]: %v", i, err)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// asLoadError returns err as a *LoadError, treating anything else as E001.
func asLoadError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// failCommand reports err through the formatter and returns a command
// error (exit code 2).
func failCommand(formatter *OutputFormatter, err error) error {
	loadErr := asLoadError(err)
	_ = formatter.Error(loadErr.Code, loadErr.Message, posDetails(loadErr.Pos))
	return NewExitError(ExitCommandError, loadErr.Error())
}

// posDetails renders a CUE position for error details, or nil.
func posDetails(pos token.Pos) any {
	if !pos.IsValid() {
		return nil
	}
	return map[string]any{
		"file":   pos.Filename(),
		"line":   pos.Line(),
		"column": pos.Column(),
	}
}
