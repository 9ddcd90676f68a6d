// Package query holds the search context that travels alongside a filter:
// the object class being searched and the caller's operation options.
//
// Both are opaque to the translator, which only forwards them to the
// column resolver. The store reads Options for projection, ordering, and
// paging.
package query

import "fmt"

// ObjectClass identifies the kind of object being searched ("account",
// "group", ...). Resolvers map it to a table.
type ObjectClass string

// Options are per-search operation options.
type Options struct {
	// AttributesToGet limits the returned attributes (nil = all mapped).
	AttributesToGet []string `yaml:"attributesToGet,omitempty" json:"attributes_to_get,omitempty"`

	// PageSize caps the number of returned objects (0 = unlimited).
	PageSize int `yaml:"pageSize,omitempty" json:"page_size,omitempty"`

	// PagedResultsOffset skips this many matching objects before returning.
	PagedResultsOffset int `yaml:"pagedResultsOffset,omitempty" json:"paged_results_offset,omitempty"`

	// SortBy names the attribute to order by (empty = the class key).
	SortBy string `yaml:"sortBy,omitempty" json:"sort_by,omitempty"`

	// SortDescending reverses the order.
	SortDescending bool `yaml:"sortDescending,omitempty" json:"sort_descending,omitempty"`
}

// Validate rejects negative paging values.
func (o Options) Validate() error {
	if o.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", o.PageSize)
	}
	if o.PagedResultsOffset < 0 {
		return fmt.Errorf("paged results offset must not be negative, got %d", o.PagedResultsOffset)
	}
	return nil
}

// Wants reports whether attribute name should be returned.
func (o Options) Wants(name string) bool {
	if len(o.AttributesToGet) == 0 {
		return true
	}
	for _, a := range o.AttributesToGet {
		if a == name {
			return true
		}
	}
	return false
}
