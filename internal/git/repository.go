package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// goGitMu synchronizes go-git operations to prevent concurrent packfile access
var goGitMu sync.Mutex

// Repository wraps a go-git repository
type Repository struct {
	*gogit.Repository
	path string
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &Repository{
		Repository: repo,
		path:       absPath,
	}, nil
}

// OpenCurrentRepository opens the repository containing the runner's working
// directory, or the process working directory when none is set.
func OpenCurrentRepository() (*Repository, error) {
	dir := defaultRunner.workingDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return OpenRepository(dir)
}

// GetRepoRoot returns the root directory of the Git repository
func GetRepoRoot() (string, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// BranchNames returns all local branch names
func (r *Repository) BranchNames() ([]string, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	branches, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return names, nil
}

// CurrentBranch returns the current branch name
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// resolveRefHash resolves a ref string to a commit hash, trying full reference
// names, local branches, remote branches, tags and finally revision expressions.
func resolveRefHash(repo *Repository, ref string) (plumbing.Hash, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	if r, err := repo.Reference(plumbing.ReferenceName(ref), true); err == nil {
		return r.Hash(), nil
	}

	if r, err := repo.Reference(plumbing.ReferenceName("refs/heads/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	if r, err := repo.Reference(plumbing.ReferenceName("refs/remotes/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	if r, err := repo.Reference(plumbing.ReferenceName("refs/tags/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// Handles SHAs, short SHAs, and expressions like HEAD~1
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("failed to resolve ref %s: reference not found", ref)
}

// ResolveRef resolves a branch name, tag, remote ref or revision expression
// to a full commit SHA.
func (r *Repository) ResolveRef(ref string) (string, error) {
	hash, err := resolveRefHash(r, ref)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// BranchExists reports whether a local branch with the given name exists.
func (r *Repository) BranchExists(name string) bool {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	_, err := r.Reference(plumbing.ReferenceName("refs/heads/"+name), true)
	return err == nil
}

// GetRevision returns the SHA a branch currently points to
func GetRevision(branchName string) (string, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return "", err
	}
	return repo.ResolveRef(branchName)
}

// GetCurrentBranch returns the current branch name
func GetCurrentBranch() (string, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return "", err
	}
	return repo.CurrentBranch()
}

// GetAllBranchNames returns all local branch names in the repository
func GetAllBranchNames() ([]string, error) {
	repo, err := OpenCurrentRepository()
	if err != nil {
		return nil, err
	}
	return repo.BranchNames()
}
