package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/socialgraph/internal/engine"
	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/store"
	"github.com/roach88/socialgraph/internal/testutil"
)

// Harness drives one scenario against a real engine.
type Harness struct {
	engine *engine.Engine
	sink   *testutil.RecordingSink
	seq    *testutil.DeterministicClock
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory backend with a deterministic
// engine clock, so identical scenarios produce identical traces.
//
// Execution flow:
// 1. Execute setup steps (any failure aborts the run)
// 2. Execute flow steps, checking expect clauses
// 3. Snapshot the state and evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	clock := testutil.NewDeterministicClock()
	if scenario.Clock != nil {
		clock = testutil.NewDeterministicClockAt(scenario.Clock.Start, scenario.Clock.Step)
	}
	sink := testutil.NewRecordingSink()

	h := &Harness{
		engine: engine.New(store.NewMemory(),
			engine.WithClock(clock),
			engine.WithSink(sink),
			engine.WithLogger(slog.New(slog.DiscardHandler)),
		),
		sink: sink,
		seq:  testutil.NewDeterministicClock(),
	}

	result := NewResult()
	for i, step := range scenario.Setup {
		if _, err := h.step(ctx, step.Op, step.Args, result); err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Op, err)
		}
	}

	for i, step := range scenario.Flow {
		got, err := h.step(ctx, step.Invoke, step.Args, result)
		if msg := checkExpect(step.Expect, got, err); msg != "" {
			result.AddError(fmt.Sprintf("flow step %d (%s): %s", i, step.Invoke, msg))
		}
	}

	snapshot, err := h.engine.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	digest, err := ir.StateDigest(snapshot)
	if err != nil {
		return nil, fmt.Errorf("digest: %w", err)
	}
	result.State = snapshot
	result.Digest = digest

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// step invokes op and appends its invocation, completion and events to the
// trace. The returned error is the operation's own error.
func (h *Harness) step(ctx context.Context, op string, rawArgs map[string]any, result *Result) (ir.IRValue, error) {
	args, err := convertArgs(rawArgs)
	if err != nil {
		return nil, fmt.Errorf("convert args: %w", err)
	}
	result.addInvocation(op, args, h.seq.Next())

	before := h.sink.Len()
	got, opErr := h.engine.Invoke(ctx, op, args)

	var value ir.IRValue
	if opErr != nil {
		code := engine.CodeOf(opErr)
		if code == "" {
			// Store failures are not scenario outcomes.
			return nil, opErr
		}
		result.addCompletion(nil, string(code), h.seq.Next())
	} else {
		value, err = ir.Encode(got)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		result.addCompletion(value, "", h.seq.Next())
	}

	for _, ev := range h.sink.Events()[before:] {
		result.addEvent(ev, h.seq.Next())
	}
	return value, opErr
}

// checkExpect returns a failure message, or "" when the outcome matches.
func checkExpect(expect *ExpectClause, got ir.IRValue, err error) string {
	if expect == nil || expect.Error == "" {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		if expect == nil || expect.Result == nil {
			return ""
		}
		want, convErr := ir.FromAny(expect.Result)
		if convErr != nil {
			return fmt.Sprintf("bad expected result: %v", convErr)
		}
		if !matchValue(want, got) {
			return fmt.Sprintf("result mismatch\n  Expected: %s\n  Actual: %s", render(want), render(got))
		}
		return ""
	}

	if err == nil {
		return fmt.Sprintf("expected error %s, got success with %s", expect.Error, render(got))
	}
	if code := engine.CodeOf(err); string(code) != expect.Error {
		return fmt.Sprintf("expected error %s, got %s: %v", expect.Error, code, err)
	}
	return ""
}

// convertArgs converts YAML-parsed arguments to an IRObject.
func convertArgs(args map[string]any) (ir.IRObject, error) {
	if args == nil {
		return ir.IRObject{}, nil
	}
	v, err := ir.FromAny(args)
	if err != nil {
		return nil, err
	}
	return v.(ir.IRObject), nil
}

func render(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
