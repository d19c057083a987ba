package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitInfo holds the commit metadata needed to reconstruct a chain tree
type CommitInfo struct {
	SHA        string
	Subject    string
	ParentSHAs []string
}

func newCommitInfo(commit *object.Commit) CommitInfo {
	parents := make([]string, 0, commit.NumParents())
	for _, p := range commit.ParentHashes {
		parents = append(parents, p.String())
	}
	return CommitInfo{
		SHA:        commit.Hash.String(),
		Subject:    strings.Split(strings.TrimSpace(commit.Message), "\n")[0],
		ParentSHAs: parents,
	}
}

// GetCommitInfo returns the metadata of a single commit
func GetCommitInfo(ref string) (CommitInfo, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return CommitInfo{}, err
	}

	hash, err := resolveRefHash(repo, ref)
	if err != nil {
		return CommitInfo{}, err
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to get commit %s: %w", ref, err)
	}
	return newCommitInfo(commit), nil
}

// GetCommitRangeInfo returns the commits reachable from head but not from base
// (base..head), newest first.
func GetCommitRangeInfo(base, head string) ([]CommitInfo, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return nil, err
	}

	headHash, err := resolveRefHash(repo, head)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head: %w", err)
	}

	var baseHash plumbing.Hash
	if base != "" {
		baseHash, err = resolveRefHash(repo, base)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve base: %w", err)
		}
	}

	commits, err := iterateCommits(repo, headHash, baseHash)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	result := make([]CommitInfo, 0, len(commits))
	for _, commit := range commits {
		result = append(result, newCommitInfo(commit))
	}
	return result, nil
}

// iterateCommits collects the commits reachable from headHash but not from
// baseHash. If baseHash is zero, all reachable commits are returned.
func iterateCommits(repo *Repository, headHash, baseHash plumbing.Hash) ([]*object.Commit, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	var commits []*object.Commit
	visited := make(map[plumbing.Hash]bool)

	queue := []plumbing.Hash{headHash}
	for len(queue) > 0 {
		hash := queue[0]
		queue = queue[1:]

		if visited[hash] || (!baseHash.IsZero() && hash == baseHash) {
			continue
		}
		visited[hash] = true

		commit, err := repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
		}

		commits = append(commits, commit)

		for _, parentHash := range commit.ParentHashes {
			if !visited[parentHash] && (baseHash.IsZero() || parentHash != baseHash) {
				queue = append(queue, parentHash)
			}
		}
	}

	return commits, nil
}
