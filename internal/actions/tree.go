package actions

import (
	"rechain.dev/rechain/internal/chain"
	"rechain.dev/rechain/internal/runtime"
	"rechain.dev/rechain/internal/tui"
)

// TreeOptions contains options for the tree command
type TreeOptions struct {
	// Branches to include in the rendering
	Branches []string
}

// TreeAction renders the commit tree spanned by the given branches without
// touching anything. Unlike the rendering done around a rebase, failures to
// build the tree are reported rather than skipped.
func TreeAction(rctx *runtime.Context, opts TreeOptions) error {
	splog := rctx.Splog

	ch, err := loadChain(opts.Branches)
	if err != nil {
		return err
	}

	ancestor, err := chain.CommonAncestor(ch.Names()...)
	if err != nil {
		return err
	}
	root, err := chain.BuildTree(ancestor, ch.Names())
	if err != nil {
		return err
	}
	if err := chain.Verify(root); err != nil {
		return err
	}

	splog.Info("%s", tui.ColorCyan("Chain:"))
	for _, line := range chain.RenderLines(root) {
		splog.Info("%s", line)
	}
	return nil
}
