package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
)

func parse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func TestScenarioFiles(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_RecordsInvocationAndCompletion(t *testing.T) {
	s := parse(t, `
name: trace_shape
description: "each step is an invocation then a completion"
setup:
  - action: account.register
    args: { username: a, email: a@example.com, password: pw }
flow:
  - invoke: cart.add
    args: { user_id: 1, menu_id: 999 }
assertions:
  - type: trace_count
    action: cart.add
    count: 1
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 4)

	inv, comp := result.Trace[2], result.Trace[3]
	assert.Equal(t, EventInvocation, inv.Type)
	assert.Equal(t, ir.IRObject{"user_id": ir.IRInt(1), "menu_id": ir.IRInt(999)}, inv.Args)
	assert.Equal(t, EventCompletion, comp.Type)
	assert.Equal(t, "CONSTRAINT_VIOLATION", comp.OutputCase)
	assert.Less(t, inv.Seq, comp.Seq)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	s := parse(t, `
name: wrong_expectations
description: "mismatched case and result are reported"
setup:
  - action: account.register
    args: { username: a, email: a@example.com, password: pw }
flow:
  - invoke: checkout
    args: { user_id: 1, confirmed_total: "0", payment_method: QRIS }
    expect:
      case: Success
  - invoke: cart.total
    args: { user_id: 1 }
    expect:
      case: Success
      result: { total: "10" }
assertions:
  - type: trace_count
    action: checkout
    count: 1
`)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `expected case "Success", got "EMPTY_CART"`)
	assert.Contains(t, result.Errors[1], "result mismatch")
}

func TestRun_SetupFailureAborts(t *testing.T) {
	s := parse(t, `
name: bad_setup
description: "setup steps must succeed"
setup:
  - action: cart.add
    args: { user_id: 1, menu_id: 1 }
flow:
  - invoke: cart.count
    args: { user_id: 1 }
assertions:
  - type: trace_count
    action: cart.count
    count: 1
`)
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONSTRAINT_VIOLATION")
}

func TestRun_MalformedArgs(t *testing.T) {
	s := parse(t, `
name: bad_args
description: "missing required args abort the run"
flow:
  - invoke: cart.count
    args: {}
assertions:
  - type: trace_count
    action: cart.count
    count: 1
`)
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `arg "user_id": required`)
}

func TestRun_FloatArgsRejected(t *testing.T) {
	s := parse(t, `
name: float_price
description: "money must be written as a string"
flow:
  - invoke: catalog.set_price
    args: { menu_id: 1, price: 12.5 }
assertions:
  - type: trace_count
    action: catalog.set_price
    count: 1
`)
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are not representable")
}

func TestFindScenarios_Filter(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "checkout_*")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "checkout_happy_path.yaml", filepath.Base(paths[0]))

	_, err = FindScenarios("testdata/scenarios", "[")
	assert.Error(t, err)
}

func TestActions_Sorted(t *testing.T) {
	names := Actions()
	assert.Contains(t, names, "checkout")
	assert.IsIncreasing(t, names)
}
