// Package ir provides the attribute value model shared by filters, the
// where-clause builder, and the store.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - NULL intent is IRNull (a nil IRValue is treated the same)
//   - Binary blobs are IRBytes and are never pushed down into SQL
//   - Strings are NFC normalized before they reach the database
package ir
