package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/socialgraph/internal/engine"
	"github.com/roach88/socialgraph/internal/ir"
)

// InitResult reports the store an engine was opened against.
type InitResult struct {
	Backend string `json:"backend"`
	Users   int64  `json:"users"`
	Posts   int64  `json:"posts"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("✓ %s store ready (users=%d, posts=%d)", r.Backend, r.Users, r.Posts)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Open the configured store",
		Long: `Open the configured store, creating the SQLite schema when needed,
and report the identifier counters.

Examples:
  socialgraph init
  SOCIALGRAPH_BACKEND=sqlite SOCIALGRAPH_SQLITE_PATH=./sg.db socialgraph init`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initStore(rootOpts, cmd)
		},
	}
}

func initStore(opts *RootOptions, cmd *cobra.Command) error {
	host, cfg, logger, err := opts.openHost(cmd)
	if err != nil {
		return err
	}
	defer host.Close()

	snap, err := host.Engine.Snapshot(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read store", err)
	}
	counters, _ := snap["counters"].(ir.IRObject)
	users, _ := counters.Int(string(engine.KindUser))
	posts, _ := counters.Int(string(engine.KindPost))

	logger.Debug("store opened", "backend", cfg.Backend, "users", users, "posts", posts)
	return opts.formatter(cmd).Success(InitResult{Backend: cfg.Backend, Users: users, Posts: posts})
}
