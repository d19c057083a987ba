package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rechain.dev/rechain/internal/git"
	"rechain.dev/rechain/testhelpers"
)

func TestRebase(t *testing.T) {
	t.Run("rebases branch onto moved parent", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		err := scene.Repo.CreateAndCheckoutBranch("branch1")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("branch1 change", "b1")
		require.NoError(t, err)

		base, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)

		// Move master forward so branch1 has something to rebase over
		err = scene.Repo.CheckoutBranch("master")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("master update", "master")
		require.NoError(t, err)

		result, err := git.Rebase(context.Background(), "branch1", "master", base)
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)

		commits, err := scene.Repo.ListBranchCommitMessages("branch1")
		require.NoError(t, err)
		require.Contains(t, commits, "master update")
		require.Contains(t, commits, "branch1 change")
	})

	t.Run("restores original checkout after rebase", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial", "init")
		})

		base, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)

		err = scene.Repo.CreateAndCheckoutBranch("branch1")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("branch1 change", "b1")
		require.NoError(t, err)

		err = scene.Repo.CheckoutBranch("master")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("master update", "master")
		require.NoError(t, err)

		result, err := git.Rebase(context.Background(), "branch1", "master", base)
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)

		current, err := scene.Repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "master", current)
	})

	t.Run("leaves conflicted rebase in progress", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial content", "conflict")
		})

		forkPoint, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)

		err = scene.Repo.CreateAndCheckoutBranch("branch1")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("branch1 change", "conflict")
		require.NoError(t, err)

		err = scene.Repo.CheckoutBranch("master")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("master conflicting change", "conflict")
		require.NoError(t, err)

		result, err := git.Rebase(context.Background(), "branch1", "master", forkPoint)
		require.NoError(t, err)
		require.Equal(t, git.RebaseConflict, result)
		require.True(t, git.IsRebaseInProgress(context.Background()))

		require.NoError(t, git.RebaseAbort(context.Background()))
		require.False(t, git.IsRebaseInProgress(context.Background()))
	})

	t.Run("continue finishes rebase after resolution", func(t *testing.T) {
		scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
			return s.Repo.CreateChangeAndCommit("initial content", "conflict")
		})

		forkPoint, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)

		err = scene.Repo.CreateAndCheckoutBranch("branch1")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("branch1 change", "conflict")
		require.NoError(t, err)

		err = scene.Repo.CheckoutBranch("master")
		require.NoError(t, err)
		err = scene.Repo.CreateChangeAndCommit("master conflicting change", "conflict")
		require.NoError(t, err)

		result, err := git.Rebase(context.Background(), "branch1", "master", forkPoint)
		require.NoError(t, err)
		require.Equal(t, git.RebaseConflict, result)

		hasConflicts, err := git.HasUnmergedFiles(context.Background())
		require.NoError(t, err)
		require.True(t, hasConflicts)

		require.NoError(t, scene.Repo.ResolveMergeConflicts())
		require.NoError(t, scene.Repo.MarkMergeConflictsAsResolved())

		result, err = git.RebaseContinue(context.Background())
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)
		require.False(t, git.IsRebaseInProgress(context.Background()))
	})
}
