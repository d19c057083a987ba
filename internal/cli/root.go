// Package cli wires the cobra command tree for the rechain binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rechain",
		Short: "Rechain re-synchronizes a chain of dependent git branches after one of them is rewritten",
		Long: `Rechain re-synchronizes a chain of dependent git branches.

When a branch early in a chain is amended or rebased, every branch built on
top of it still points at the old commits. Rechain rebases each dependent
branch onto the new position of its parent, replaying only its own commits.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newRebaseCmd())
	rootCmd.AddCommand(newContinueCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
