// Package testhelpers provides testing utilities, including a scene system,
// Git repository helpers and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil, otherwise
// returns the value. Useful for test setup code where errors are not
// expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected
// branches, order-independent.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	sort.Strings(expected)

	require.Equal(t, expected, branches, "Branches do not match")
}

// ExpectCommits asserts that the given branch starts with the expected
// commit subjects, newest first.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	commits, err := repo.ListBranchCommitMessages(branch)
	require.NoError(t, err, "Failed to list commits")

	if len(commits) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits on %s, got %d", len(expected), branch, len(commits))
		return
	}

	require.Equal(t, expected, commits[:len(expected)], "Commits on %s do not match", branch)
}
