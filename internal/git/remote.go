package git

// GetRemote returns the name of the first configured remote, or "" when the
// repository has none.
func GetRemote() string {
	remotes, err := RunGitCommandLines("remote")
	if err != nil || len(remotes) == 0 {
		return ""
	}
	return remotes[0]
}
