package actions

import (
	"context"
	"fmt"

	"rechain.dev/rechain/internal/chain"
	"rechain.dev/rechain/internal/config"
	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/internal/runtime"
	"rechain.dev/rechain/internal/tui"
)

// RebaseOptions contains options for the rebase command
type RebaseOptions struct {
	// Branches is the chain, most-upstream first
	Branches []string
	// Onto is the ref the chain root is rebased onto. Empty means the
	// repository's configured trunk.
	Onto string
	// SkipRoot leaves the first branch in place and only moves the rest
	SkipRoot bool
	WalkOptions
}

// RebaseAction transplants the whole chain onto a new base ref, root first,
// then re-anchors the dependent branches exactly as an update would.
func RebaseAction(rctx *runtime.Context, opts RebaseOptions) error {
	splog := rctx.Splog

	ch, err := loadChain(opts.Branches)
	if err != nil {
		return err
	}

	onto := opts.Onto
	if onto == "" && !opts.SkipRoot {
		onto, err = config.GetTrunk(rctx.RepoRoot)
		if err != nil {
			return err
		}
	}

	if onto != "" {
		repo, err := git.OpenCurrentRepository()
		if err != nil {
			return err
		}
		if _, err := repo.ResolveRef(onto); err != nil {
			return fmt.Errorf("cannot resolve rebase target %s: %w", onto, err)
		}
	}

	if err := printChain(splog, "Current chain:", ch.Names(), true); err != nil {
		return err
	}

	walk := func(ctx context.Context) (*chain.WalkResult, error) {
		return ch.RebaseOnto(ctx, onto, opts.SkipRoot)
	}
	if err := runWalk(rctx, walk, ch, opts.WalkOptions); err != nil {
		return err
	}

	if err := printChain(splog, "Rebased chain:", ch.Names(), false); err != nil {
		return err
	}
	if opts.SkipRoot {
		splog.Info("%s", tui.ColorGreen(fmt.Sprintf("Rebased chain in place under %s.", ch.Branches[0].Name)))
	} else {
		splog.Info("%s", tui.ColorGreen(fmt.Sprintf("Rebased chain onto %s.", onto)))
	}
	return nil
}
