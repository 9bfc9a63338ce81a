package env

import (
	"os"
	"strings"
)

// InputVar returns the environment variable name a task runner uses to pass
// the named input (e.g. `changeSetId` => `INPUT_CHANGESETID`).
func InputVar(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// Input returns the trimmed value of a task runner input, empty if missing.
func Input(name string) string {
	return strings.TrimSpace(os.Getenv(InputVar(name)))
}

// InGitHubActions returns true when running inside a GitHub Actions job.
func InGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// GitHubOutputFile returns the GitHub Actions step output file path, if any.
func GitHubOutputFile() string {
	return os.Getenv("GITHUB_OUTPUT")
}
