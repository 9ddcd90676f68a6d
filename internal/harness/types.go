package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Translation is the canonical document of the translated filter
	// (see translate.Result.Document), with Where rebound for the
	// scenario's dialect.
	Translation map[string]any `json:"translation"`

	// Keys are the key attribute values of the rows returned by the
	// search, in order. Nil when the scenario has no rows.
	Keys []string `json:"keys,omitempty"`

	// PostFiltered reports whether the search re-checked rows in memory.
	PostFiltered bool `json:"post_filtered,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Searched reports whether the scenario ran a search.
func (r *Result) Searched() bool {
	return r.Keys != nil
}
