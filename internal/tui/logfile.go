package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file. Uses RECHAIN_LOG_FILE
// when set, otherwise ~/.rechain/logs/rechain.log. Returns an empty string
// when no usable location exists, which disables file logging.
func GetLogFilePath() string {
	if envPath := os.Getenv("RECHAIN_LOG_FILE"); envPath != "" {
		return envPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homeDir, ".rechain", "logs", "rechain.log")
}
