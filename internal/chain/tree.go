package chain

import (
	"fmt"
	"sort"
	"strings"

	"rechain.dev/rechain/internal/git"
)

// Commit is a node in a chain tree: a commit plus the chain branches pointing
// at it and the commits built directly on top of it.
type Commit struct {
	SHA      string
	Subject  string
	Refs     []string
	IsMerge  bool
	Children []*Commit
}

// SortedChildren returns the children ordered by SHA for stable output
func (c *Commit) SortedChildren() []*Commit {
	children := make([]*Commit, len(c.Children))
	copy(children, c.Children)
	sort.Slice(children, func(i, j int) bool {
		return children[i].SHA < children[j].SHA
	})
	return children
}

// Walk visits the node and all of its descendants depth-first
func (c *Commit) Walk(visit func(*Commit)) {
	visit(c)
	for _, child := range c.SortedChildren() {
		child.Walk(visit)
	}
}

// FindRef returns the descendant commit carrying the given branch name, or nil
func (c *Commit) FindRef(ref string) *Commit {
	var found *Commit
	c.Walk(func(node *Commit) {
		if found != nil {
			return
		}
		for _, r := range node.Refs {
			if r == ref {
				found = node
				return
			}
		}
	})
	return found
}

// CommonAncestor returns the most recent commit shared by all of the given
// refs, folding the pairwise merge base across the list.
func CommonAncestor(refs ...string) (string, error) {
	if len(refs) == 0 {
		return "", fmt.Errorf("no refs given")
	}

	ancestor, err := git.GetRevision(refs[0])
	if err != nil {
		return "", err
	}
	for _, ref := range refs[1:] {
		ancestor, err = git.GetMergeBaseByRef(ancestor, ref)
		if err != nil {
			return "", err
		}
	}
	return ancestor, nil
}

// BuildTree reconstructs the commit tree spanning the given branches above the
// ancestor commit. Branch names are attached to the commits their tips point
// at; the ancestor itself carries the names of branches that sit exactly on it.
func BuildTree(ancestor string, branches []string) (*Commit, error) {
	ancestorInfo, err := git.GetCommitInfo(ancestor)
	if err != nil {
		return nil, err
	}

	infos := map[string]git.CommitInfo{
		ancestorInfo.SHA: {SHA: ancestorInfo.SHA, Subject: ancestorInfo.Subject},
	}
	refs := map[string][]string{}

	for _, branch := range branches {
		tip, err := git.GetRevision(branch)
		if err != nil {
			return nil, err
		}
		rangeInfos, err := git.GetCommitRangeInfo(ancestorInfo.SHA, tip)
		if err != nil {
			return nil, err
		}
		for _, info := range rangeInfos {
			if _, ok := infos[info.SHA]; !ok {
				infos[info.SHA] = info
			}
		}
		refs[tip] = append(refs[tip], branch)
	}

	nodes := make(map[string]*Commit, len(infos))
	for sha, info := range infos {
		nodes[sha] = &Commit{
			SHA:     sha,
			Subject: info.Subject,
			Refs:    refs[sha],
			IsMerge: len(info.ParentSHAs) > 1,
		}
	}

	// Invert parent links into child links. Parents below the ancestor are
	// outside the tree and ignored.
	for sha, info := range infos {
		for _, parentSHA := range info.ParentSHAs {
			if parent, ok := nodes[parentSHA]; ok {
				parent.Children = append(parent.Children, nodes[sha])
			}
		}
	}

	return nodes[ancestorInfo.SHA], nil
}

// Verify rejects chain trees the rebase walk cannot express: merge commits
// and commits carrying more than one chain branch.
func Verify(root *Commit) error {
	var verifyErr error
	root.Walk(func(node *Commit) {
		if verifyErr != nil {
			return
		}
		if node.IsMerge {
			verifyErr = fmt.Errorf("commit %s is a merge; merge commits are not supported", node.SHA)
			return
		}
		if len(node.Refs) > 1 {
			verifyErr = fmt.Errorf("commit %s has references [%s]; commits with multiple references are not supported",
				node.SHA, strings.Join(sortedStrings(node.Refs), ","))
		}
	})
	return verifyErr
}

// RenderLines returns the tree as indented lines of short SHA, subject and refs
func RenderLines(root *Commit) []string {
	var lines []string
	renderInto(&lines, root, 0)
	return lines
}

func renderInto(lines *[]string, node *Commit, depth int) {
	shortSHA := node.SHA
	if len(shortSHA) > 7 {
		shortSHA = shortSHA[:7]
	}
	line := strings.Repeat("    ", depth) + shortSHA + " " + node.Subject
	if len(node.Refs) > 0 {
		line += " (" + strings.Join(sortedStrings(node.Refs), ", ") + ")"
	}
	*lines = append(*lines, line)
	for _, child := range node.SortedChildren() {
		renderInto(lines, child, depth+1)
	}
}

func sortedStrings(values []string) []string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return sorted
}
