package cli

import (
	"github.com/spf13/cobra"

	"rechain.dev/rechain/internal/actions"
	"rechain.dev/rechain/internal/runtime"
)

// newTreeCmd creates the tree command
func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <branch> <branch>...",
		Short: "Render the commit tree spanned by a chain of branches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer func() { _ = rctx.Splog.Close() }()

			return actions.TreeAction(rctx, actions.TreeOptions{Branches: args})
		},
	}

	return cmd
}
