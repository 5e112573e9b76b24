package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/socialgraph/internal/ir"
)

// StateResult is the printed state snapshot.
type StateResult struct {
	Digest string      `json:"digest"`
	State  ir.IRObject `json:"state"`
}

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	DigestOnly bool
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the state snapshot and digest",
		Long: `Print every user, post, public key binding, follow edge and counter,
with the state digest. Equal digests mean equal state.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printState(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DigestOnly, "digest", false, "print only the digest")

	return cmd
}

func printState(opts *StateOptions, cmd *cobra.Command) error {
	host, _, _, err := opts.openHost(cmd)
	if err != nil {
		return err
	}
	defer host.Close()

	ctx := cmd.Context()
	snap, err := host.Engine.Snapshot(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read store", err)
	}
	digest, err := ir.StateDigest(snap)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest state", err)
	}

	formatter := opts.formatter(cmd)
	if opts.DigestOnly {
		return formatter.Success(digest)
	}
	return formatter.Success(StateResult{Digest: digest, State: snap})
}
