package ir

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// IRValue is a sealed interface representing attribute values.
// Only IRNull, IRString, IRInt, IRBool, and IRBytes implement this.
// NO IRFloat - floats make equality and ordering non-deterministic.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents the absence of a value (NULL intent).
// A nil IRValue is treated identically; use IsNull to test for both.
type IRNull struct{}

func (IRNull) irValue() {}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value.
// Always int64, never float64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRBytes represents an opaque binary blob (photos, certificates, hashes).
// Binary values are never pushed down into SQL predicates.
type IRBytes []byte

func (IRBytes) irValue() {}

// binaryKey is the map key marking a base64-encoded binary value in
// JSON and YAML documents: {"$binary": "aGVsbG8="}.
const binaryKey = "$binary"

// IsNull reports whether v is NULL (nil or IRNull).
func IsNull(v IRValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(IRNull)
	return ok
}

// IsBinary reports whether v is an opaque binary blob.
func IsBinary(v IRValue) bool {
	_, ok := v.(IRBytes)
	return ok
}

// KindOf returns a short name for the value's kind, used in messages.
func KindOf(v IRValue) string {
	switch v.(type) {
	case nil, IRNull:
		return "null"
	case IRString:
		return "string"
	case IRInt:
		return "int"
	case IRBool:
		return "bool"
	case IRBytes:
		return "bytes"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// NormalizeString returns s in Unicode NFC form.
// Strings are normalized before they are bound so that composed and
// decomposed spellings of the same name compare equal in the database.
func NormalizeString(s string) string {
	return norm.NFC.String(s)
}

// ToDriver converts v to a database/sql driver value.
// NULL becomes nil.
func ToDriver(v IRValue) any {
	switch val := v.(type) {
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRBool:
		return bool(val)
	case IRBytes:
		return []byte(val)
	default:
		return nil
	}
}

// FromAny converts a decoded Go value (from JSON, YAML, CUE or a database
// row) into an IRValue.
//
// Accepted inputs: nil, string, bool, all integer kinds, []byte,
// json.Number holding an integer, and the map {"$binary": "<base64>"}.
// Floats are rejected unless they hold an exact integer.
func FromAny(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return IRInt(val), nil
	case float64:
		// YAML and CUE decode whole numbers into float64 in some paths.
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("floats are not allowed in attribute values: %v", val)
		}
		return IRInt(int64(val)), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are not allowed in attribute values: %s", s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return IRInt(n), nil
	case []byte:
		return IRBytes(bytes.Clone(val)), nil
	case map[string]any:
		return binaryFromMap(val)
	default:
		return nil, fmt.Errorf("unsupported attribute value type: %T", v)
	}
}

func binaryFromMap(m map[string]any) (IRValue, error) {
	raw, ok := m[binaryKey]
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("object values are not allowed (only {%q: <base64>})", binaryKey)
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a base64 string, got %T", binaryKey, raw)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", binaryKey, err)
	}
	return IRBytes(b), nil
}

// UnmarshalIRValue decodes a single JSON value into an IRValue.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// MarshalIRValue marshals an IRValue to JSON bytes.
// Binary values use the {"$binary": "<base64>"} form so they round-trip
// through UnmarshalIRValue.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return json.Marshal(int64(val))
	case IRBool:
		return json.Marshal(bool(val))
	case IRBytes:
		return json.Marshal(map[string]string{binaryKey: base64.StdEncoding.EncodeToString(val)})
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// Equal reports whether a and b hold the same kind and value.
// NULL is equal to NULL here; SQL comparison semantics live in the filter
// evaluator, not in value identity.
func Equal(a, b IRValue) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case IRString:
		bv, ok := b.(IRString)
		return ok && av == bv
	case IRInt:
		bv, ok := b.(IRInt)
		return ok && av == bv
	case IRBool:
		bv, ok := b.(IRBool)
		return ok && av == bv
	case IRBytes:
		bv, ok := b.(IRBytes)
		return ok && bytes.Equal(av, bv)
	}
	return false
}

// Compare orders two non-NULL values of the same kind.
// Returns (-1|0|1, true), or (0, false) when the values are not comparable
// (NULL on either side, or mismatched kinds).
func Compare(a, b IRValue) (int, bool) {
	if IsNull(a) || IsNull(b) {
		return 0, false
	}
	switch av := a.(type) {
	case IRString:
		bv, ok := b.(IRString)
		if !ok {
			return 0, false
		}
		return strings.Compare(string(av), string(bv)), true
	case IRInt:
		bv, ok := b.(IRInt)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case IRBool:
		bv, ok := b.(IRBool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !bool(av):
			return -1, true
		}
		return 1, true
	case IRBytes:
		bv, ok := b.(IRBytes)
		if !ok {
			return 0, false
		}
		return bytes.Compare(av, bv), true
	}
	return 0, false
}
