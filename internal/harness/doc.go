// Package harness runs YAML scenarios against a real repository and checks
// the resulting trace and final database state.
//
// # Scenario Format
//
//	name: checkout_happy_path
//	description: "Two adds merge into one line and check out"
//	setup:
//	  - action: account.register
//	    args: { username: andin, email: andin@example.com, password: pw }
//	flow:
//	  - invoke: cart.add
//	    args: { user_id: 1, menu_id: 1, quantity: 2 }
//	    expect:
//	      case: Success
//	  - invoke: checkout
//	    args: { user_id: 1, confirmed_total: "30000", payment_method: QRIS }
//	    expect:
//	      case: Success
//	      result: { order: { total_price: "30000" } }
//	assertions:
//	  - type: trace_count
//	    action: cart.add
//	    count: 1
//	  - type: final_state
//	    table: orders
//	    where: { id: 1 }
//	    expect: { status: Pending }
//
// Every step records an invocation and a completion. The completion case is
// "Success" or the error code (EMPTY_CART, TOTAL_MISMATCH, ...).
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly N times
//   - final_state: exactly one row of a table matches where and expect
//
// # Deterministic Execution
//
// Each scenario gets a fresh in-memory database seeded with the built-in
// catalog, a fixed clock and sequential ids, so traces are stable enough for
// golden comparison. Decimal amounts are written as strings in YAML.
package harness
