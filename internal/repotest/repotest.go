// Helpers for tests that need a real repository to run git against.
package repotest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// A throwaway repository in a temp dir.
//
// Commit dates advance a minute per commit so that log order and hashes are
// the same on every run.
type Repo struct {
	Dir     string
	t       testing.TB
	commits int
}

// Creates an empty repository, skipping the test if git isn't installed.
func New(t testing.TB) *Repo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	r := &Repo{Dir: t.TempDir(), t: t}
	r.Git("init", "--quiet")
	r.Git("config", "commit.gpgsign", "false")
	r.Git("config", "tag.gpgsign", "false")
	return r
}

// Runs git in the repository and returns its trimmed output. Fails the test if
// git exits non-zero.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	return r.gitWithEnv(nil, args...)
}

func (r *Repo) gitWithEnv(env []string, args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(
		os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL="+os.DevNull,
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	cmd.Env = append(cmd.Env, env...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}

	return strings.TrimSpace(string(out))
}

// Writes files (path to content) into the working tree.
func (r *Repo) Write(files map[string]string) {
	r.t.Helper()

	for path, content := range files {
		full := filepath.Join(r.Dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			r.t.Fatalf("could not create dir for %s: %v", path, err)
		}

		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			r.t.Fatalf("could not write %s: %v", path, err)
		}
	}
}

// Writes files, then commits everything as the given author. Returns the
// commit hash.
func (r *Repo) Commit(
	name string,
	email string,
	subject string,
	files map[string]string,
) string {
	r.t.Helper()

	r.Write(files)
	r.Git("add", "--all")

	r.commits++
	date := fmt.Sprintf("2024-01-01T00:%02d:00Z", r.commits)
	env := []string{
		"GIT_AUTHOR_NAME=" + name,
		"GIT_AUTHOR_EMAIL=" + email,
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_DATE=" + date,
	}

	r.gitWithEnv(env, "commit", "--quiet", "--allow-empty", "-m", subject)
	return r.Git("rev-parse", "HEAD")
}

// Merges branch into the current branch with a merge commit.
func (r *Repo) Merge(branch string) string {
	r.t.Helper()

	r.commits++
	date := fmt.Sprintf("2024-01-01T00:%02d:00Z", r.commits)
	env := []string{
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_DATE=" + date,
	}

	r.gitWithEnv(env, "merge", "--quiet", "--no-ff", "-m", "Merge "+branch, branch)
	return r.Git("rev-parse", "HEAD")
}

func (r *Repo) Tag(name string) {
	r.t.Helper()
	r.Git("tag", name)
}
