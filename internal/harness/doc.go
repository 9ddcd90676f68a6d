// Package harness runs translation scenarios for column mappings.
//
// A scenario pairs a filter with a mapping, checks how it translates, and
// optionally runs it against seed rows in an in-memory SQLite database to
// check which objects come back. Golden snapshots pin the canonical JSON
// of each run.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: admins_or_unassigned
//	description: "Accounts whose uid starts with adm or with no department"
//	mapping: ../mappings/accounts.yaml
//	class: account
//	dialect: postgres
//	options: {pageSize: 10}
//	filter:
//	  or:
//	    - startsWith: {uid: adm}
//	    - equals: {department: null}
//	rows:
//	  - {uid: adm1, department: it}
//	  - {uid: bob, department: null}
//	assertions:
//	  - type: where
//	    where: ("user_name" LIKE $1 OR "department" IS NULL)
//	  - type: args
//	    args: ["adm%"]
//	  - type: result_keys
//	    keys: [adm1, bob]
//
// # Assertion Types
//
//   - where: the rebound fragment text
//   - args: the bind values, compared as canonical JSON
//   - supported: whether anything was pushed down
//   - exact: whether the fragment alone decides membership
//   - result_keys: key values of the rows the search returned, in order
//   - post_filtered: whether the search re-checked rows in memory
//
// # Deterministic Testing
//
// Searches use testutil.FixedIDGenerator with the scenario name as the
// request id, and a fresh in-memory database per scenario.
package harness
