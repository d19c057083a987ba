package cli

import (
	"time"

	"github.com/spf13/cobra"

	"rechain.dev/rechain/internal/actions"
	"rechain.dev/rechain/internal/runtime"
)

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	var (
		addAll          bool
		wait            bool
		conflictTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Finish a conflicted chain rebase and process the remaining branches",
		Long: `Finish a conflicted chain rebase and process the remaining branches.

Run this after resolving the conflicts of a rebase that rechain left in
progress. The interrupted rebase is completed, the conflicted branch is
pointed at the result and the rest of the chain is walked as before.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer func() { _ = rctx.Splog.Close() }()

			return actions.ContinueAction(rctx, actions.ContinueOptions{
				AddAll: addAll,
				WalkOptions: actions.WalkOptions{
					Wait:            wait,
					ConflictTimeout: conflictTimeout,
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&addAll, "all", "a", false, "Stage all changes before continuing")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until further rebase conflicts are resolved instead of exiting")
	cmd.Flags().DurationVar(&conflictTimeout, "conflict-timeout", 0, "How long --wait blocks before giving up (default: repository config)")

	return cmd
}
