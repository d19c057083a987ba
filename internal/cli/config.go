package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rechain.dev/rechain/internal/config"
	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/internal/runtime"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	var (
		trunk           string
		remote          string
		conflictTimeout int
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the repository configuration",
		Long: `Show or change the repository configuration.

Without flags the current configuration is printed. With flags the given
values are stored in .git/.rechain_config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer func() { _ = rctx.Splog.Close() }()
			splog := rctx.Splog

			cfg, err := config.GetRepoConfig(rctx.RepoRoot)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("trunk") {
				cfg.Trunk = &trunk
				changed = true
			}
			if cmd.Flags().Changed("remote") {
				cfg.Remote = &remote
				changed = true
			}
			if cmd.Flags().Changed("conflict-timeout") {
				if conflictTimeout <= 0 {
					return fmt.Errorf("conflict timeout must be positive")
				}
				cfg.ConflictTimeoutSeconds = &conflictTimeout
				changed = true
			}

			if changed {
				if err := config.WriteRepoConfig(rctx.RepoRoot, cfg); err != nil {
					return err
				}
			}

			trunkName, err := config.GetTrunk(rctx.RepoRoot)
			if err != nil {
				return err
			}
			timeoutSeconds, err := config.GetConflictTimeoutSeconds(rctx.RepoRoot)
			if err != nil {
				return err
			}
			remoteName := ""
			if cfg.Remote != nil {
				remoteName = *cfg.Remote
			}
			if remoteName == "" {
				remoteName = git.GetRemote()
			}

			splog.Info("trunk: %s", trunkName)
			splog.Info("remote: %s", remoteName)
			splog.Info("conflict timeout: %ds", timeoutSeconds)
			return nil
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "Branch rebase targets when no --onto is given")
	cmd.Flags().StringVar(&remote, "remote", "", "Remote used when qualifying branch names")
	cmd.Flags().IntVar(&conflictTimeout, "conflict-timeout", 0, "Conflict resolution timeout in seconds for --wait runs")

	return cmd
}
