// Package actions implements the operations behind the CLI commands. Each
// action validates its inputs, drives the chain walk and reports progress.
package actions

import (
	"context"

	"rechain.dev/rechain/internal/chain"
	"rechain.dev/rechain/internal/runtime"
	"rechain.dev/rechain/internal/tui"
)

// UpdateOptions contains options for the update command
type UpdateOptions struct {
	// Branches is the chain, most-upstream first. The first branch is the
	// rewritten one; it is never moved.
	Branches []string
	WalkOptions
}

// UpdateAction re-anchors every branch of the chain after the first one,
// which is taken as already holding its final commits.
func UpdateAction(rctx *runtime.Context, opts UpdateOptions) error {
	splog := rctx.Splog

	ch, err := loadChain(opts.Branches)
	if err != nil {
		return err
	}

	if len(ch.Branches) < 2 {
		splog.Info("Nothing to update: the chain has no dependent branches.")
		return nil
	}

	if err := printChain(splog, "Current chain:", ch.Names(), true); err != nil {
		return err
	}

	walk := func(ctx context.Context) (*chain.WalkResult, error) {
		return ch.Update(ctx)
	}
	if err := runWalk(rctx, walk, ch, opts.WalkOptions); err != nil {
		return err
	}

	if err := printChain(splog, "Updated chain:", ch.Names(), false); err != nil {
		return err
	}
	splog.Info("%s", tui.ColorGreen("Chain is up to date."))
	return nil
}
