package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/socialgraph/internal/engine"
)

// OperationInfo describes one engine operation.
type OperationInfo struct {
	Name     string   `json:"name"`
	Params   []string `json:"params"`
	Mutation bool     `json:"mutation"`
}

// OperationList is printed by the ops command.
type OperationList []OperationInfo

func (l OperationList) String() string {
	var b strings.Builder
	for i, op := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		kind := "read"
		if op.Mutation {
			kind = "mutate"
		}
		fmt.Fprintf(&b, "%-28s %-6s %s", op.Name, kind, strings.Join(op.Params, " "))
	}
	return b.String()
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List engine operations",
		Long: `List every operation invoke accepts with its parameters.
Parameters ending in "?" are optional and may be null.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(listOperations())
		},
	}
}

func listOperations() OperationList {
	names := engine.Operations()
	out := make(OperationList, 0, len(names))
	for _, name := range names {
		params := engine.Params(name)
		if params == nil {
			params = []string{}
		}
		out = append(out, OperationInfo{
			Name:     name,
			Params:   params,
			Mutation: engine.IsMutation(name),
		})
	}
	return out
}
