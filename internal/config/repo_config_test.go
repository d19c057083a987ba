package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rechain.dev/rechain/internal/config"
	"rechain.dev/rechain/testhelpers"
)

func TestRepoConfig(t *testing.T) {
	t.Run("defaults when no config file exists", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		// The scene writes a config; drop it to exercise the defaults
		require.NoError(t, os.Remove(filepath.Join(scene.Dir, ".git", ".rechain_config")))

		trunk, err := config.GetTrunk(scene.Dir)
		require.NoError(t, err)
		require.Equal(t, "master", trunk)

		timeout, err := config.GetConflictTimeoutSeconds(scene.Dir)
		require.NoError(t, err)
		require.Equal(t, config.DefaultConflictTimeoutSeconds, timeout)
	})

	t.Run("round-trips configured values", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		trunk := "develop"
		timeout := 600
		err := config.WriteRepoConfig(scene.Dir, &config.RepoConfig{
			Trunk:                  &trunk,
			ConflictTimeoutSeconds: &timeout,
		})
		require.NoError(t, err)

		gotTrunk, err := config.GetTrunk(scene.Dir)
		require.NoError(t, err)
		require.Equal(t, "develop", gotTrunk)

		gotTimeout, err := config.GetConflictTimeoutSeconds(scene.Dir)
		require.NoError(t, err)
		require.Equal(t, 600, gotTimeout)
	})
}

func TestContinuationState(t *testing.T) {
	t.Run("persists and reloads state", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		state := &config.ContinuationState{
			Chain:                 []string{"branch1", "branch2", "branch3"},
			OldTips:               map[string]string{"branch1": "aaa", "branch2": "bbb", "branch3": "ccc"},
			Completed:             []string{"branch1"},
			ConflictBranch:        "branch2",
			CurrentBranchOverride: "master",
		}
		require.NoError(t, config.PersistContinuationState(scene.Dir, state))

		loaded, err := config.GetContinuationState(scene.Dir)
		require.NoError(t, err)
		require.Equal(t, state, loaded)
	})

	t.Run("clear removes the state file", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)

		state := &config.ContinuationState{
			Chain:          []string{"branch1"},
			OldTips:        map[string]string{"branch1": "aaa"},
			ConflictBranch: "branch1",
		}
		require.NoError(t, config.PersistContinuationState(scene.Dir, state))
		require.NoError(t, config.ClearContinuationState(scene.Dir))

		_, err := config.GetContinuationState(scene.Dir)
		require.Error(t, err)
	})
}
