package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/socialgraph/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Events   []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Events) > 0 {
		fmt.Fprintf(&buf, "\nEmitted events:\n")
		for i, ev := range e.Events {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, ev.Kind, render(ev.Payload))
		}
	}
	return buf.String()
}

// assertEventEmitted checks that some event of the given kind carries a
// payload containing every expected field.
func assertEventEmitted(events []TraceEvent, assertion Assertion) error {
	want, err := ir.FromAny(assertion.Payload)
	if err != nil {
		return fmt.Errorf("event_emitted: bad payload: %w", err)
	}
	for _, ev := range events {
		if string(ev.Kind) == assertion.Kind && (assertion.Payload == nil || matchValue(want, ev.Payload)) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEventEmitted,
		Expected: fmt.Sprintf("event %s with payload %s", assertion.Kind, render(want)),
		Actual:   "not emitted",
		Events:   events,
	}
}

// assertEventOrder checks that the kinds appear in order. Other events may
// appear in between.
func assertEventOrder(events []TraceEvent, assertion Assertion) error {
	next := 0
	for _, ev := range events {
		if next < len(assertion.Kinds) && string(ev.Kind) == assertion.Kinds[next] {
			next++
		}
	}
	if next == len(assertion.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: fmt.Sprintf("events in order: %v", assertion.Kinds),
		Actual:   fmt.Sprintf("matched %d of %d, stopped at %s", next, len(assertion.Kinds), assertion.Kinds[next]),
		Events:   events,
	}
}

// assertEventCount checks that kind was emitted exactly Count times.
func assertEventCount(events []TraceEvent, assertion Assertion) error {
	count := 0
	for _, ev := range events {
		if string(ev.Kind) == assertion.Kind {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Events:   events,
		}
	}
	return nil
}

// assertFinalState looks up one entry of the state snapshot and matches it.
func assertFinalState(state ir.IRObject, assertion Assertion) error {
	actual, found := lookupEntry(state, assertion.Entity, assertion.Key)

	if assertion.Absent {
		if found {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("no %s entry %q", assertion.Entity, assertion.Key),
				Actual:   render(actual),
			}
		}
		return nil
	}

	if !found {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s entry %q", assertion.Entity, assertion.Key),
			Actual:   "not found",
		}
	}
	want, err := ir.FromAny(assertion.Expect)
	if err != nil {
		return fmt.Errorf("final_state: bad expect: %w", err)
	}
	if !matchValue(want, actual) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s[%s] = %s", assertion.Entity, assertion.Key, render(want)),
			Actual:   render(actual),
		}
	}
	return nil
}

// lookupEntry finds key in a snapshot section. users and posts are arrays
// searched by id; the other sections are objects.
func lookupEntry(state ir.IRObject, entity, key string) (ir.IRValue, bool) {
	switch section := state[entity].(type) {
	case ir.IRArray:
		for _, elem := range section {
			obj, ok := elem.(ir.IRObject)
			if !ok {
				continue
			}
			if id, _ := obj.String("id"); id == key {
				return obj, true
			}
		}
	case ir.IRObject:
		v, ok := section[key]
		return v, ok
	}
	return nil, false
}

// matchValue reports whether actual satisfies expected. Objects match as a
// subset at every depth; arrays must have the same length and match element
// by element; scalars must be equal.
func matchValue(expected, actual ir.IRValue) bool {
	switch exp := expected.(type) {
	case ir.IRObject:
		act, ok := actual.(ir.IRObject)
		if !ok {
			return false
		}
		for k, v := range exp {
			av, ok := act[k]
			if !ok || !matchValue(v, av) {
				return false
			}
		}
		return true
	case ir.IRArray:
		act, ok := actual.(ir.IRArray)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchValue(exp[i], act[i]) {
				return false
			}
		}
		return true
	default:
		return expected == actual
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	events := result.Events()

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertEventEmitted:
			err = assertEventEmitted(events, assertion)
		case AssertEventOrder:
			err = assertEventOrder(events, assertion)
		case AssertEventCount:
			err = assertEventCount(events, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
