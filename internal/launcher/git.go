package launcher

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitRemoteURL returns the origin remote URL for a project directory.
func GitRemoteURL(projectPath string) (string, error) {
	out, err := exec.Command("git", "-C", projectPath, "remote", "get-url", "origin").Output()
	if err != nil {
		return "", fmt.Errorf("no git remote origin for %s", projectPath)
	}
	return strings.TrimSpace(string(out)), nil
}

// GitHubURL converts a git remote URL to a browsable GitHub URL. Both the
// SSH form (git@github.com:user/repo.git) and the HTTPS form are handled.
func GitHubURL(remote string) (string, bool) {
	remote = strings.TrimSpace(remote)

	if rest, ok := strings.CutPrefix(remote, "git@github.com:"); ok {
		return "https://github.com/" + strings.TrimSuffix(rest, ".git"), true
	}
	if strings.HasPrefix(remote, "https://github.com/") {
		return strings.TrimSuffix(remote, ".git"), true
	}
	return "", false
}
