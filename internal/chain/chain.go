// Package chain re-anchors an ordered list of dependent branches after an
// upstream branch in the list has been rewritten. Each branch is rebased onto
// the new position of its chain parent, bounded by the commit it was based on
// before the run started, so that only its own commits are replayed.
package chain

import (
	"context"
	"errors"
	"fmt"

	rechainerrors "rechain.dev/rechain/internal/errors"
	"rechain.dev/rechain/internal/git"
)

// BranchRef is a chain entry: a branch name plus the commit it pointed to
// when the run started and, once its step has completed, the commit it points
// to now.
type BranchRef struct {
	Name    string
	OldTip  string
	NewTip  string
	Rebased bool
}

// Chain is an ordered list of branch references. Position i is assumed to be
// built on top of one of positions 0..i-1.
type Chain struct {
	Branches []*BranchRef
}

// WalkResult reports how far a walk got
type WalkResult struct {
	// Completed lists the branches whose rebase finished, in order
	Completed []string
	// Conflict names the branch whose rebase halted on a conflict, or ""
	Conflict string
	// ConflictOnto is the ref the conflicted branch was being rebased onto
	ConflictOnto string
	// Remaining lists the branches after the conflicted one, untouched
	Remaining []string
}

// Load resolves each branch name and records its current tip. Every name must
// resolve to an existing local branch; the first failure aborts the load.
func Load(names []string) (*Chain, error) {
	repo, err := git.OpenCurrentRepository()
	if err != nil {
		return nil, err
	}

	chain := &Chain{Branches: make([]*BranchRef, 0, len(names))}
	for _, name := range names {
		if !repo.BranchExists(name) {
			return nil, rechainerrors.NewBranchNotFoundError(name)
		}
		tip, err := repo.ResolveRef(name)
		if err != nil {
			return nil, rechainerrors.NewBranchNotFoundError(name)
		}
		chain.Branches = append(chain.Branches, &BranchRef{Name: name, OldTip: tip})
	}
	return chain, nil
}

// Resume rebuilds a chain from a persisted run: names in original order, the
// tips recorded when that run started, and the branches whose rebase that run
// (or the conflict resolution afterwards) already finished.
func Resume(names []string, oldTips map[string]string, done []string) (*Chain, error) {
	doneSet := make(map[string]bool, len(done))
	for _, name := range done {
		doneSet[name] = true
	}

	chain := &Chain{Branches: make([]*BranchRef, 0, len(names))}
	for _, name := range names {
		oldTip, ok := oldTips[name]
		if !ok {
			return nil, fmt.Errorf("no recorded tip for branch %s", name)
		}
		chain.Branches = append(chain.Branches, &BranchRef{
			Name:    name,
			OldTip:  oldTip,
			Rebased: doneSet[name],
		})
	}
	return chain, nil
}

// Names returns the branch names in chain order
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.Branches))
	for _, b := range c.Branches {
		names = append(names, b.Name)
	}
	return names
}

// OldTips returns the recorded starting tip of every branch
func (c *Chain) OldTips() map[string]string {
	tips := make(map[string]string, len(c.Branches))
	for _, b := range c.Branches {
		tips[b.Name] = b.OldTip
	}
	return tips
}

// Update walks the chain treating branch[0] as the already-updated source of
// truth: it is left untouched and every later branch is re-anchored relative
// to it.
func (c *Chain) Update(ctx context.Context) (*WalkResult, error) {
	return c.walk(ctx, 1, "")
}

// RebaseOnto walks the chain rebasing branch[0] onto the external ref first,
// then re-anchors the rest of the chain relative to it. With skipRoot set,
// branch[0] is left where it is (the original structure keeps its root) and
// only the later branches move.
func (c *Chain) RebaseOnto(ctx context.Context, onto string, skipRoot bool) (*WalkResult, error) {
	if skipRoot {
		return c.walk(ctx, 1, "")
	}
	return c.walk(ctx, 0, onto)
}

// ResumeWalk continues a walk from the first branch after the root that has
// not been rebased yet. Used after a conflicted rebase has been resolved and
// finished; the root of a resumed run was either already rebased or never
// meant to move.
func (c *Chain) ResumeWalk(ctx context.Context) (*WalkResult, error) {
	for i := 1; i < len(c.Branches); i++ {
		if !c.Branches[i].Rebased {
			return c.walk(ctx, i, "")
		}
	}
	return &WalkResult{}, nil
}

// walk performs the sequential rebase steps from index start. When
// ontoForFirst is non-empty the step at index 0 targets that external ref;
// otherwise branch[0] never moves.
func (c *Chain) walk(ctx context.Context, start int, ontoForFirst string) (*WalkResult, error) {
	result := &WalkResult{}
	if len(c.Branches) < 2 && ontoForFirst == "" {
		return result, nil
	}

	for i := start; i < len(c.Branches); i++ {
		branch := c.Branches[i]

		var onto, anchor string
		if i == 0 {
			fp, err := git.GetForkPoint(ontoForFirst, branch.OldTip)
			if err != nil {
				if errors.Is(err, rechainerrors.ErrNoCommonAncestor) {
					c.fillRemaining(result, i)
					return result, rechainerrors.NewNoCommonAncestorError(branch.Name, ontoForFirst)
				}
				return result, err
			}
			onto, anchor = ontoForFirst, fp
		} else {
			parent, parentAnchor, err := c.selectParent(i)
			if err != nil {
				c.fillRemaining(result, i)
				return result, err
			}
			onto, anchor = parent.Name, parentAnchor
		}

		rebaseResult, err := git.Rebase(ctx, branch.Name, onto, anchor)
		if err != nil {
			c.fillRemaining(result, i)
			return result, err
		}
		if rebaseResult == git.RebaseConflict {
			result.Conflict = branch.Name
			result.ConflictOnto = onto
			c.fillRemaining(result, i+1)
			return result, nil
		}

		newTip, err := git.GetRevision(branch.Name)
		if err != nil {
			return result, err
		}
		branch.NewTip = newTip
		branch.Rebased = true
		result.Completed = append(result.Completed, branch.Name)
	}

	return result, nil
}

// selectParent picks the chain entry branch i was built on: the earlier entry
// whose recorded tip yields the deepest merge base with branch i's recorded
// tip. For a strictly linear chain this is always entry i-1; for a side
// branch listed after its siblings it is the branch it actually forked from.
// Ties go to the earliest entry, so a branch forked from an interior commit
// re-anchors under the oldest ancestor that contains it.
func (c *Chain) selectParent(i int) (*BranchRef, string, error) {
	branch := c.Branches[i]

	type candidate struct {
		ref    *BranchRef
		anchor string
	}
	var candidates []candidate

	for j := 0; j < i; j++ {
		parent := c.Branches[j]
		anchor, err := c.anchorWith(branch, parent)
		if err != nil {
			if errors.Is(err, rechainerrors.ErrNoCommonAncestor) {
				continue
			}
			return nil, "", err
		}
		candidates = append(candidates, candidate{ref: parent, anchor: anchor})
	}

	if len(candidates) == 0 {
		return nil, "", rechainerrors.NewNoCommonAncestorError(branch.Name, c.Branches[i-1].Name)
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.anchor == best.anchor {
			continue
		}
		deeper, err := git.IsAncestor(best.anchor, cand.anchor)
		if err != nil {
			return nil, "", err
		}
		if deeper {
			best = cand
		}
	}

	return best.ref, best.anchor, nil
}

// anchorWith finds the commit branch was based on relative to parent. When the
// parent has already been rebased in this run both recorded tips are exact.
// When it has not (an already-updated chain root), the parent may have been
// amended or rebased out-of-band, so the fork point is consulted first.
func (c *Chain) anchorWith(branch, parent *BranchRef) (string, error) {
	if parent.Rebased {
		return git.GetMergeBaseByRef(branch.OldTip, parent.OldTip)
	}
	return git.GetForkPoint(parent.Name, branch.OldTip)
}

func (c *Chain) fillRemaining(result *WalkResult, from int) {
	for i := from; i < len(c.Branches); i++ {
		result.Remaining = append(result.Remaining, c.Branches[i].Name)
	}
}

// MarkRebased records that a branch's step finished outside a walk, after a
// conflicted rebase was resolved and run to completion.
func (c *Chain) MarkRebased(name, newTip string) {
	for _, b := range c.Branches {
		if b.Name == name {
			b.NewTip = newTip
			b.Rebased = true
			return
		}
	}
}

// RebasedCount returns how many branches of the chain have completed their
// step, counting from the front in chain order.
func (c *Chain) RebasedCount() int {
	count := 0
	for _, b := range c.Branches {
		if b.Rebased {
			count++
		}
	}
	return count
}
