package harness

import "github.com/roach88/socialgraph/internal/ir"

// Trace entry types.
const (
	TypeInvocation = "invocation"
	TypeCompletion = "completion"
	TypeEvent      = "event"
)

// TraceEvent is one entry in a scenario trace: an operation invocation, its
// completion, or a domain event the operation emitted.
type TraceEvent struct {
	Type string `json:"type"`
	Seq  int64  `json:"seq"`

	// Invocation fields.
	Op   string      `json:"op,omitempty"`
	Args ir.IRObject `json:"args,omitempty"`

	// Completion fields. Exactly one of Result or Error is set; Result is
	// IRNull for operations with no result.
	Result ir.IRValue `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`

	// Event fields.
	Kind    ir.EventKind `json:"kind,omitempty"`
	Payload ir.IRObject  `json:"payload,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds setup and flow entries in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the engine snapshot after the flow.
	State ir.IRObject `json:"state,omitempty"`

	// Digest is the state digest after the flow.
	Digest string `json:"digest,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addInvocation(op string, args ir.IRObject, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{Type: TypeInvocation, Op: op, Args: args, Seq: seq})
}

func (r *Result) addCompletion(result ir.IRValue, code string, seq int64) {
	ev := TraceEvent{Type: TypeCompletion, Seq: seq}
	if code != "" {
		ev.Error = code
	} else {
		ev.Result = result
	}
	r.Trace = append(r.Trace, ev)
}

func (r *Result) addEvent(ev ir.Event, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{Type: TypeEvent, Kind: ev.Kind(), Payload: ev.Payload(), Seq: seq})
}

// Events returns only the event entries of the trace.
func (r *Result) Events() []TraceEvent {
	var out []TraceEvent
	for _, te := range r.Trace {
		if te.Type == TypeEvent {
			out = append(out, te)
		}
	}
	return out
}
