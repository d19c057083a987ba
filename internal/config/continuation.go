package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ContinuationState represents a chain walk that was interrupted by a rebase
// conflict: everything `rechain continue` needs to finish the halted rebase
// and re-anchor the rest of the chain.
type ContinuationState struct {
	// Chain is the full ordered branch list of the interrupted run
	Chain []string `json:"chain"`
	// OldTips records each branch's tip when the run started; anchors for
	// the remaining steps are computed from these
	OldTips map[string]string `json:"oldTips"`
	// Completed lists the branches whose rebase finished before the conflict
	Completed []string `json:"completed,omitempty"`
	// ConflictBranch is the branch whose rebase halted
	ConflictBranch string `json:"conflictBranch"`
	// CurrentBranchOverride is the branch that was checked out when the run
	// started, restored once the walk finishes
	CurrentBranchOverride string `json:"currentBranchOverride,omitempty"`
}

// GetContinuationState reads the continuation state from disk
func GetContinuationState(repoRoot string) (*ContinuationState, error) {
	configPath := filepath.Join(repoRoot, ".git", ".rechain_continue")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no continuation state found")
		}
		return nil, fmt.Errorf("failed to read continuation state: %w", err)
	}

	var state ContinuationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse continuation state: %w", err)
	}
	return &state, nil
}

// PersistContinuationState writes the continuation state to disk
func PersistContinuationState(repoRoot string, state *ContinuationState) error {
	configPath := filepath.Join(repoRoot, ".git", ".rechain_continue")
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal continuation state: %w", err)
	}
	return os.WriteFile(configPath, data, 0600)
}

// ClearContinuationState removes the continuation state file
func ClearContinuationState(repoRoot string) error {
	configPath := filepath.Join(repoRoot, ".git", ".rechain_continue")
	err := os.Remove(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear continuation state: %w", err)
	}
	return nil
}
