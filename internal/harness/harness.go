package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/testutil"
)

// ScenarioTime is the fixed clock every scenario runs at.
var ScenarioTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger handed to the repository. Runs are silent by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Harness executes one scenario against a private repository.
type Harness struct {
	repo   *repository.Repository
	logger *slog.Logger
	seq    int64
}

func (h *Harness) next() int64 {
	h.seq++
	return h.seq
}

// Run executes a scenario in a fresh in-memory database seeded with the
// built-in catalog. The returned error covers infrastructure and setup
// failures; expectation and assertion failures are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}

	repo, err := repository.Open(":memory:", repository.Options{
		Logger:     h.logger,
		Clock:      testutil.NewFixedClock(ScenarioTime),
		IDs:        testutil.NewSequenceGenerator(scenario.Name),
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory repository: %w", err)
	}
	defer repo.Close()
	h.repo = repo

	if _, err := repo.SeedCatalog(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, result, scenario.Assertions, repo.Store()) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSetup runs setup steps. Any failure aborts the run.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		outcome, value, err := h.invoke(ctx, step.Action, step.Args, result)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		if outcome != SuccessCase {
			return fmt.Errorf("setup step %d (%s): completed with %s %v", i, step.Action, outcome, value)
		}
	}
	return nil
}

// executeFlow runs flow steps and checks their expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		outcome, value, err := h.invoke(ctx, step.Invoke, step.Args, result)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		if step.Expect == nil {
			continue
		}

		if outcome != step.Expect.Case {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected case %q, got %q (result %s)",
				i, step.Invoke, step.Expect.Case, outcome, describe(value)))
			continue
		}
		if len(step.Expect.Result) > 0 {
			want, err := ir.FromGo(step.Expect.Result)
			if err != nil {
				return fmt.Errorf("flow step %d: expect.result: %w", i, err)
			}
			if !matchSubset(want, value) {
				result.AddError(fmt.Sprintf("flow[%d] %s: result mismatch\n  expected (subset): %s\n  actual: %s",
					i, step.Invoke, describe(want), describe(value)))
			}
		}
	}
	return nil
}

// invoke records an invocation, runs the action and records its completion.
// Domain errors become the completion case; only malformed steps return err.
func (h *Harness) invoke(ctx context.Context, name string, rawArgs map[string]any, result *Result) (string, ir.IRValue, error) {
	fn, ok := actions[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown action %q", name)
	}

	args := ir.IRObject{}
	if len(rawArgs) > 0 {
		v, err := ir.FromGo(rawArgs)
		if err != nil {
			return "", nil, fmt.Errorf("%s: args: %w", name, err)
		}
		args = v.(ir.IRObject)
	}
	result.AddInvocationTrace(name, args, h.next())

	out, err := fn(ctx, h.repo, args)
	var argErr *argError
	if errors.As(err, &argErr) {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}

	outcome := SuccessCase
	var value ir.IRValue
	if err != nil {
		outcome = string(errs.CodeOf(err))
		value = errorResult(err)
	} else if out != nil {
		v, convErr := ir.FromStruct(out)
		if convErr != nil {
			return "", nil, fmt.Errorf("%s: result: %w", name, convErr)
		}
		value = v
	}

	result.AddCompletionTrace(name, outcome, value, h.next())
	h.logger.Debug("scenario step completed", "action", name, "case", outcome)
	return outcome, value, nil
}

// errorResult keeps only an error's details so traces do not depend on
// message wording.
func errorResult(err error) ir.IRValue {
	var e *errs.Error
	if !errors.As(err, &e) || len(e.Details) == 0 {
		return nil
	}
	details := make(ir.IRObject, len(e.Details))
	for k, v := range e.Details {
		details[k] = ir.IRString(v)
	}
	return ir.IRObject{"details": details}
}

func describe(v ir.IRValue) string {
	if v == nil {
		return "null"
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
