// Package harness runs conformance scenarios against the engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	clock: { start: 100, step: 1 }
//	setup:
//	  - op: create_user
//	    args: { name: alice, avatar: a.png, bio: "", public_key: pk-a }
//	flow:
//	  - invoke: follow_user
//	    args: { follower_id: "1", followee_id: "1" }
//	    expect:
//	      error: CONFLICT
//	  - invoke: get_user
//	    args: { id: "1" }
//	    expect:
//	      result: { name: alice }
//	assertions:
//	  - type: event_emitted
//	    kind: UserCreated
//	    payload: { id: "1" }
//	  - type: final_state
//	    entity: users
//	    key: "1"
//	    expect: { name: alice }
//
// # Assertion Types
//
//   - event_emitted: an event of the kind was emitted with a matching payload
//   - event_order: the kinds were emitted in this order, gaps allowed
//   - event_count: the kind was emitted exactly N times
//   - final_state: a state snapshot entry matches, or is absent
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory backend, a testutil.DeterministicClock for
// timestamps and a second one for trace sequence numbers. Traces are
// therefore identical across runs and can be compared against golden files
// with RunWithGolden.
package harness
