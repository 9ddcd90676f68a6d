package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/dbfilter/internal/colmap"
	"github.com/roach88/dbfilter/internal/ir"
	"github.com/roach88/dbfilter/internal/where"
)

// unmarshalColumn converts a scanned driver value into an IRValue using
// the declared column type.
//
// Drivers disagree on representations: MySQL returns text and numbers as
// []byte, SQLite returns BOOLEAN columns as bool but an undeclared column
// as int64, and DATETIME columns as time.Time.
func unmarshalColumn(col colmap.Column, raw any) (ir.IRValue, error) {
	if raw == nil {
		return ir.IRNull{}, nil
	}

	switch col.Type {
	case where.Varchar, where.Timestamp:
		switch v := raw.(type) {
		case []byte:
			return ir.IRString(string(v)), nil
		case time.Time:
			return ir.IRString(v.UTC().Format(time.RFC3339Nano)), nil
		}

	case where.Integer, where.Bigint:
		if b, ok := raw.([]byte); ok {
			n, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			return ir.IRInt(n), nil
		}

	case where.Boolean:
		switch v := raw.(type) {
		case int64:
			return ir.IRBool(v != 0), nil
		case []byte:
			b, err := strconv.ParseBool(string(v))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			return ir.IRBool(b), nil
		}

	case where.Blob:
		if s, ok := raw.(string); ok {
			return ir.IRBytes(s), nil
		}
	}

	v, err := ir.FromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col.Name, err)
	}
	return v, nil
}
