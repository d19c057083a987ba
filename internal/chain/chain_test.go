package chain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rechain.dev/rechain/internal/chain"
	rechainerrors "rechain.dev/rechain/internal/errors"
	"rechain.dev/rechain/testhelpers"
)

// buildLinearChain creates branch1..branchN stacked on master, one commit per
// branch, and leaves master checked out.
func buildLinearChain(t *testing.T, scene *testhelpers.Scene, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch(name))
		require.NoError(t, scene.Repo.CreateChangeAndCommit(name+" change", name))
	}
	require.NoError(t, scene.Repo.CheckoutBranch("master"))
}

func TestLoad(t *testing.T) {
	t.Run("records the current tip of every branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		ch, err := chain.Load([]string{"branch1", "branch2"})
		require.NoError(t, err)
		require.Equal(t, []string{"branch1", "branch2"}, ch.Names())
		require.Equal(t, testhelpers.Must(scene.Repo.GetRevision("branch1")), ch.Branches[0].OldTip)
		require.Equal(t, testhelpers.Must(scene.Repo.GetRevision("branch2")), ch.Branches[1].OldTip)
	})

	t.Run("rejects unknown branches", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1")

		_, err := chain.Load([]string{"branch1", "missing"})
		require.ErrorIs(t, err, rechainerrors.ErrBranchNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("is a no-op when nothing changed", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		branch2Tip := testhelpers.Must(scene.Repo.GetRevision("branch2"))

		ch, err := chain.Load([]string{"branch1", "branch2"})
		require.NoError(t, err)

		result, err := ch.Update(context.Background())
		require.NoError(t, err)
		require.Empty(t, result.Conflict)

		require.Equal(t, branch2Tip, testhelpers.Must(scene.Repo.GetRevision("branch2")))
		testhelpers.ExpectBranches(t, scene.Repo, []string{"master", "branch1", "branch2"})
	})

	t.Run("carries dependents over a fast-forwarded base", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		// New commit on branch1; branch2 still points at the old tip
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 extra", "b1extra"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		ch, err := chain.Load([]string{"branch1", "branch2"})
		require.NoError(t, err)

		result, err := ch.Update(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"branch2"}, result.Completed)

		testhelpers.ExpectCommits(t, scene.Repo, "branch2",
			[]string{"branch2 change", "branch1 extra", "branch1 change"})
	})

	t.Run("replays only own commits over an amended base", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2", "branch3")

		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndAmend("branch1 amended", "b1"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		ch, err := chain.Load([]string{"branch1", "branch2", "branch3"})
		require.NoError(t, err)

		result, err := ch.Update(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"branch2", "branch3"}, result.Completed)

		// Each dependent carries exactly its own commit on the new base
		testhelpers.ExpectCommits(t, scene.Repo, "branch2",
			[]string{"branch2 change", "branch1 change", "1"})
		testhelpers.ExpectCommits(t, scene.Repo, "branch3",
			[]string{"branch3 change", "branch2 change", "branch1 change", "1"})

		count, err := scene.Repo.GetCommitCount("master", "branch3")
		require.NoError(t, err)
		require.Equal(t, 3, count)

		// Dependents sit on the amended commit, not the pre-amend one
		isAncestor, err := scene.Repo.IsAncestor("branch1", "branch3")
		require.NoError(t, err)
		require.True(t, isAncestor)
	})

	t.Run("re-anchors a side branch under its actual fork", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		// branch3 forks from branch1, not branch2
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch3"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch3 change", "branch3"))

		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndAmend("branch1 amended", "b1"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		ch, err := chain.Load([]string{"branch1", "branch2", "branch3"})
		require.NoError(t, err)

		result, err := ch.Update(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"branch2", "branch3"}, result.Completed)

		// branch3 still hangs off branch1 and does not pick up branch2's commit
		commits, err := scene.Repo.ListBranchCommitMessages("branch3")
		require.NoError(t, err)
		require.Equal(t, []string{"branch3 change", "branch1 change", "1"}, commits)

		isAncestor, err := scene.Repo.IsAncestor("branch1", "branch3")
		require.NoError(t, err)
		require.True(t, isAncestor)
	})

	t.Run("stops on unrelated history and leaves later branches untouched", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		require.NoError(t, scene.Repo.RunGitCommand("checkout", "--orphan", "stranger"))
		require.NoError(t, scene.Repo.RunGitCommand("rm", "-r", "-f", "--cached", "."))
		require.NoError(t, scene.Repo.RunGitCommand("clean", "-fd"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("stranger change", "stranger"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		branch2Tip := testhelpers.Must(scene.Repo.GetRevision("branch2"))

		ch, err := chain.Load([]string{"branch1", "stranger", "branch2"})
		require.NoError(t, err)

		_, err = ch.Update(context.Background())
		require.ErrorIs(t, err, rechainerrors.ErrNoCommonAncestor)

		// branch2 was after the failing entry and must not have moved
		require.Equal(t, branch2Tip, testhelpers.Must(scene.Repo.GetRevision("branch2")))
	})

	t.Run("reports a conflict and the remaining branches", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 change", "shared"))

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch2"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch2 change", "shared"))

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch3"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch3 change", "branch3"))

		// Amend branch1 touching the same file branch2 changes
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndAmend("branch1 conflicting", "shared"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		ch, err := chain.Load([]string{"branch1", "branch2", "branch3"})
		require.NoError(t, err)

		result, err := ch.Update(context.Background())
		require.NoError(t, err)
		require.Equal(t, "branch2", result.Conflict)
		require.Equal(t, "branch1", result.ConflictOnto)
		require.Equal(t, []string{"branch3"}, result.Remaining)
		require.True(t, scene.Repo.RebaseInProgress())
	})
}

func TestUpdateRebaseFailure(t *testing.T) {
	t.Run("reports untouched branches when a rebase fails outright", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2", "branch3")

		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 extra", "b1extra"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		// An untracked file that collides with branch2's tree makes git
		// refuse to start the rebase, without entering a conflict state.
		require.NoError(t, scene.Repo.CreateChange("blocking content", "branch1", true))

		branch2Tip := testhelpers.Must(scene.Repo.GetRevision("branch2"))

		ch, err := chain.Load([]string{"branch1", "branch2", "branch3"})
		require.NoError(t, err)

		result, err := ch.Update(context.Background())
		require.Error(t, err)
		require.False(t, scene.Repo.RebaseInProgress())

		require.Equal(t, []string{"branch2", "branch3"}, result.Remaining)
		require.Equal(t, branch2Tip, testhelpers.Must(scene.Repo.GetRevision("branch2")))
	})
}

func TestRebaseOnto(t *testing.T) {
	t.Run("transplants the whole chain onto another ref", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("feature change", "feature"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		ch, err := chain.Load([]string{"branch1", "branch2"})
		require.NoError(t, err)

		result, err := ch.RebaseOnto(context.Background(), "feature", false)
		require.NoError(t, err)
		require.Equal(t, []string{"branch1", "branch2"}, result.Completed)

		testhelpers.ExpectCommits(t, scene.Repo, "branch2",
			[]string{"branch2 change", "branch1 change", "feature change", "1"})
	})

	t.Run("skip root leaves the first branch in place", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2")

		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 extra", "b1extra"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		branch1Tip := testhelpers.Must(scene.Repo.GetRevision("branch1"))

		ch, err := chain.Load([]string{"branch1", "branch2"})
		require.NoError(t, err)

		result, err := ch.RebaseOnto(context.Background(), "", true)
		require.NoError(t, err)
		require.Equal(t, []string{"branch2"}, result.Completed)

		require.Equal(t, branch1Tip, testhelpers.Must(scene.Repo.GetRevision("branch1")))
		testhelpers.ExpectCommits(t, scene.Repo, "branch2",
			[]string{"branch2 change", "branch1 extra", "branch1 change"})
	})
}

func TestResume(t *testing.T) {
	t.Run("continues after the conflicted branch was finished by hand", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		buildLinearChain(t, scene, "branch1", "branch2", "branch3")

		ch, err := chain.Load([]string{"branch1", "branch2", "branch3"})
		require.NoError(t, err)

		// New commit on branch1 after the tips were recorded
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 extra", "b1extra"))
		require.NoError(t, scene.Repo.CheckoutBranch("master"))

		resumed, err := chain.Resume(ch.Names(), ch.OldTips(), []string{"branch2"})
		require.NoError(t, err)
		require.Equal(t, 1, resumed.RebasedCount())

		result, err := resumed.ResumeWalk(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"branch3"}, result.Completed)
	})
}
