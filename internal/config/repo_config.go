// Package config provides repository configuration management, including
// reading and writing rechain configuration files stored under .git/.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConflictTimeoutSeconds is how long a --wait run polls for conflict
// resolution before giving up (24 hours).
const DefaultConflictTimeoutSeconds = 24 * 60 * 60

// RepoConfig represents the repository configuration
type RepoConfig struct {
	Trunk                  *string `json:"trunk,omitempty"`
	Remote                 *string `json:"remote,omitempty"`
	ConflictTimeoutSeconds *int    `json:"conflictTimeoutSeconds,omitempty"`
}

// GetRepoConfig reads the repository configuration. A missing file yields the
// default configuration.
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	configPath := filepath.Join(repoRoot, ".git", ".rechain_config")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return &RepoConfig{}, nil
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	return &config, nil
}

// WriteRepoConfig writes the repository configuration
func WriteRepoConfig(repoRoot string, config *RepoConfig) error {
	configPath := filepath.Join(repoRoot, ".git", ".rechain_config")
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repo config: %w", err)
	}
	return os.WriteFile(configPath, data, 0600)
}

// GetTrunk returns the configured trunk branch name, defaulting to "master".
// This is the branch `rebase` targets when no --onto is given.
func GetTrunk(repoRoot string) (string, error) {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return "", err
	}

	if config.Trunk != nil && *config.Trunk != "" {
		return *config.Trunk, nil
	}

	return "master", nil
}

// GetConflictTimeoutSeconds returns the configured conflict-resolution
// timeout for --wait runs.
func GetConflictTimeoutSeconds(repoRoot string) (int, error) {
	config, err := GetRepoConfig(repoRoot)
	if err != nil {
		return 0, err
	}

	if config.ConflictTimeoutSeconds != nil && *config.ConflictTimeoutSeconds > 0 {
		return *config.ConflictTimeoutSeconds, nil
	}

	return DefaultConflictTimeoutSeconds, nil
}
