package git

import "context"

// GetUnmergedFiles returns the paths that currently carry unresolved conflict
// markers.
func GetUnmergedFiles(ctx context.Context) ([]string, error) {
	return RunGitCommandLinesWithContext(ctx, "diff", "--name-only", "--diff-filter=U")
}

// HasUnmergedFiles reports whether the working tree has unresolved conflicts
func HasUnmergedFiles(ctx context.Context) (bool, error) {
	files, err := GetUnmergedFiles(ctx)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}
