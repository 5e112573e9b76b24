package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/socialgraph/internal/engine"
	"github.com/roach88/socialgraph/internal/ir"
)

// InvokeOptions holds flags for the invoke and query commands.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// InvokeResult is the payload printed for a completed operation.
type InvokeResult struct {
	Op     string        `json:"op"`
	Result any           `json:"result"`
	Events []EventOutput `json:"events"`
}

// EventOutput is a domain event as printed by the CLI.
type EventOutput struct {
	Kind    ir.EventKind `json:"kind"`
	Payload ir.IRObject  `json:"payload"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <operation>",
		Short: "Run one engine operation",
		Long: `Run one engine operation against the configured store.

Arguments are a JSON object whose keys are the operation's parameters
(see "socialgraph ops"). Numbers must be integers.

Exit codes:
  0 - Operation succeeded
  1 - Operation failed (NOT_FOUND, CONFLICT, UNAUTHORIZED, or
      INVALID_ARGUMENT for a missing or mistyped argument)
  2 - Command error (--args is not a valid JSON object, unknown operation,
      store unavailable)

Examples:
  socialgraph invoke create_user --args '{"name":"alice","avatar":"a.png","bio":"","public_key":"pk-a"}'
  socialgraph invoke follow_user --args '{"follower_id":"1","followee_id":"2"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOperation(opts, args[0], false, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "operation arguments as JSON")

	return cmd
}

// NewQueryCommand creates the query command: invoke restricted to reads.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <operation>",
		Short: "Run a read-only engine operation",
		Long: `Run a read-only engine operation. Mutations are rejected.

Examples:
  socialgraph query get_all_posts
  socialgraph query get_following_feed --args '{"user_id":"1"}' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOperation(opts, args[0], true, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "operation arguments as JSON")

	return cmd
}

func invokeOperation(opts *InvokeOptions, op string, readOnly bool, cmd *cobra.Command) error {
	if !slices.Contains(engine.Operations(), op) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown operation %q (see 'socialgraph ops')", op))
	}
	if readOnly && engine.IsMutation(op) {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s mutates state; use 'socialgraph invoke'", op))
	}

	arguments, err := parseArgs(opts.Args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --args", err)
	}

	var events []EventOutput
	collect := engine.SinkFunc(func(ev ir.Event) {
		events = append(events, EventOutput{Kind: ev.Kind(), Payload: ev.Payload()})
	})

	host, _, logger, err := opts.openHost(cmd, collect)
	if err != nil {
		return err
	}
	defer host.Close()

	requestID := opts.requestID()
	formatter := opts.formatter(cmd)
	formatter.RequestID = requestID
	logger = logger.With("request_id", requestID, "op", op)
	logger.Debug("invoke", "args", opts.Args)

	result, err := host.Engine.Invoke(cmd.Context(), op, arguments)
	if err != nil {
		code := engine.CodeOf(err)
		if code == "" {
			logger.Error("store failure", "error", err)
			return WrapExitError(ExitCommandError, op, err)
		}
		logger.Info("operation failed", "code", code)
		if ferr := formatter.Error(string(code), err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, op, err)
	}
	logger.Debug("operation complete", "events", len(events))

	if events == nil {
		events = []EventOutput{}
	}
	return formatter.Success(InvokeResult{Op: op, Result: result, Events: events})
}

// parseArgs decodes --args into an IRObject. Floats are rejected.
func parseArgs(raw string) (ir.IRObject, error) {
	if raw == "" {
		return ir.IRObject{}, nil
	}
	v, err := ir.UnmarshalIRValue([]byte(raw))
	if err != nil {
		return nil, err
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}
