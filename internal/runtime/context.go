// Package runtime provides a context type that holds the logger and repo
// location for use throughout the application. This avoids passing multiple
// parameters.
package runtime

import (
	"fmt"

	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/internal/tui"
)

// Context provides access to the repository and output for commands
type Context struct {
	Splog    *tui.Splog
	RepoRoot string
}

// NewContext creates a new context with the given repo root
func NewContext(repoRoot string) *Context {
	return &Context{
		Splog:    tui.NewSplog(),
		RepoRoot: repoRoot,
	}
}

// GetContext locates the enclosing git repository and builds a context for it
func GetContext() (*Context, error) {
	repoRoot, err := git.GetRepoRoot()
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	ctx := NewContext(repoRoot)

	if logPath := tui.GetLogFilePath(); logPath != "" {
		if splog, err := tui.NewSplogWithFile(logPath); err == nil {
			ctx.Splog = splog
		}
	}

	return ctx, nil
}
