package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/socialgraph/internal/ir"
)

func eventTrace() []TraceEvent {
	return []TraceEvent{
		{Type: TypeEvent, Seq: 1, Kind: ir.KindUserCreated, Payload: ir.IRObject{"id": ir.IRString("1"), "name": ir.IRString("alice")}},
		{Type: TypeEvent, Seq: 2, Kind: ir.KindPostCreated, Payload: ir.IRObject{"id": ir.IRString("1"), "timestamp": ir.IRInt(5)}},
		{Type: TypeEvent, Seq: 3, Kind: ir.KindPostLiked, Payload: ir.IRObject{"id": ir.IRString("1"), "user_id": ir.IRString("1")}},
	}
}

func TestAssertEventEmitted(t *testing.T) {
	events := eventTrace()

	assert.NoError(t, assertEventEmitted(events, Assertion{Kind: "PostCreated"}))
	assert.NoError(t, assertEventEmitted(events, Assertion{Kind: "PostCreated", Payload: map[string]any{"timestamp": 5}}))

	err := assertEventEmitted(events, Assertion{Kind: "PostCreated", Payload: map[string]any{"timestamp": 6}})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertEventEmitted, ae.Type)
	assert.Contains(t, err.Error(), "Emitted events:")

	assert.Error(t, assertEventEmitted(events, Assertion{Kind: "TipSent"}))
}

func TestAssertEventOrder(t *testing.T) {
	events := eventTrace()

	assert.NoError(t, assertEventOrder(events, Assertion{Kinds: []string{"UserCreated", "PostLiked"}}))
	assert.NoError(t, assertEventOrder(events, Assertion{Kinds: []string{"UserCreated", "PostCreated", "PostLiked"}}))

	err := assertEventOrder(events, Assertion{Kinds: []string{"PostLiked", "PostCreated"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped at PostCreated")

	assert.Error(t, assertEventOrder(events, Assertion{Kinds: []string{"UserCreated", "UserCreated"}}))
}

func TestAssertEventCount(t *testing.T) {
	events := eventTrace()

	assert.NoError(t, assertEventCount(events, Assertion{Kind: "PostLiked", Count: 1}))
	assert.NoError(t, assertEventCount(events, Assertion{Kind: "TipSent", Count: 0}))

	err := assertEventCount(events, Assertion{Kind: "PostLiked", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences")
}

func testState() ir.IRObject {
	return ir.IRObject{
		"users": ir.IRArray{
			ir.IRObject{"id": ir.IRString("1"), "name": ir.IRString("alice")},
			ir.IRObject{"id": ir.IRString("2"), "name": ir.IRString("bob")},
		},
		"posts":       ir.IRArray{},
		"public_keys": ir.IRObject{"pk-a": ir.IRString("1")},
		"followers":   ir.IRObject{"1": ir.IRArray{ir.IRString("2")}},
		"following":   ir.IRObject{},
		"counters":    ir.IRObject{"user": ir.IRInt(2), "post": ir.IRInt(0)},
	}
}

func TestAssertFinalState(t *testing.T) {
	state := testState()

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"user by id", Assertion{Entity: "users", Key: "2", Expect: map[string]any{"name": "bob"}}, ""},
		{"user mismatch", Assertion{Entity: "users", Key: "2", Expect: map[string]any{"name": "alice"}}, "users[2]"},
		{"missing user", Assertion{Entity: "users", Key: "3", Expect: map[string]any{}}, "not found"},
		{"public key", Assertion{Entity: "public_keys", Key: "pk-a", Expect: "1"}, ""},
		{"followers list", Assertion{Entity: "followers", Key: "1", Expect: []any{"2"}}, ""},
		{"followers list length", Assertion{Entity: "followers", Key: "1", Expect: []any{"2", "3"}}, "followers[1]"},
		{"counter", Assertion{Entity: "counters", Key: "user", Expect: 2}, ""},
		{"absent", Assertion{Entity: "posts", Key: "1", Absent: true}, ""},
		{"absent but present", Assertion{Entity: "users", Key: "1", Absent: true}, "no users entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFinalState(state, tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchValue(t *testing.T) {
	obj := ir.IRObject{
		"id":    ir.IRString("1"),
		"likes": ir.IRArray{ir.IRObject{"user_id": ir.IRString("2"), "timestamp": ir.IRInt(3)}},
	}

	assert.True(t, matchValue(ir.IRObject{}, obj))
	assert.True(t, matchValue(ir.IRObject{"likes": ir.IRArray{ir.IRObject{"user_id": ir.IRString("2")}}}, obj))
	assert.False(t, matchValue(ir.IRObject{"likes": ir.IRArray{}}, obj))
	assert.False(t, matchValue(ir.IRObject{"missing": ir.IRNull{}}, obj))
	assert.True(t, matchValue(ir.IRNull{}, ir.IRNull{}))
	assert.False(t, matchValue(ir.IRInt(1), ir.IRString("1")))
	assert.False(t, matchValue(ir.IRString("1"), obj))
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = eventTrace()
	result.State = testState()

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertEventCount, Kind: "UserCreated", Count: 1},
		{Type: AssertFinalState, Entity: "users", Key: "1", Expect: map[string]any{"name": "alice"}},
		{Type: AssertEventCount, Kind: "UserCreated", Count: 5},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "5 occurrences of UserCreated")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}
