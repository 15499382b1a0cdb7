package git

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sinclairtarget/git-tagstats/internal/git/cmd"
)

// A handle on a local repository. All queries run git inside its top level.
type Repo struct {
	root        string
	mailmapPath string
	useMailmap  bool
}

// Locates the top level of the repository containing dir (or the working
// directory if dir is empty).
//
// Author identities are run through .mailmap when useMailmap is set and a
// mailmap file exists.
func OpenRepo(
	ctx context.Context,
	dir string,
	useMailmap bool,
) (_ *Repo, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error opening repository: %w", err)
		}
	}()

	subprocess, err := cmd.RunRevParseTopLevel(ctx, dir)
	if err != nil {
		return nil, err
	}

	root, err := subprocess.StdoutText()
	if err != nil {
		return nil, err
	}

	err = subprocess.Wait()
	if err != nil {
		return nil, err
	}

	repo := &Repo{root: root}

	if useMailmap {
		repo.mailmapPath, err = detectMailmap(ctx, root)
		if err != nil {
			return nil, err
		}

		repo.useMailmap = repo.mailmapPath != ""
	}

	logger().Debug(
		"opened repository",
		"root",
		root,
		"mailmap",
		repo.mailmapPath,
	)
	return repo, nil
}

func (r *Repo) Root() string {
	return r.root
}

func (r *Repo) UsesMailmap() bool {
	return r.useMailmap
}

// Runs git log for the query and returns its raw output lines to f.
func (r *Repo) DumpLog(ctx context.Context, q Query, f func(string)) error {
	subprocess, err := cmd.RunLog(
		ctx,
		r.root,
		q.Range.String(),
		q.Paths,
		q.Filters,
		r.useMailmap,
	)
	if err != nil {
		return err
	}

	lines, finish := subprocess.StdoutLines()
	for line := range lines {
		f(line)
	}

	err = finish()
	if err != nil {
		return err
	}

	return subprocess.Wait()
}

// Returns the non-merge commits in the query's range, oldest first.
func (r *Repo) Commits(ctx context.Context, q Query) (_ []Commit, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error getting commits for %s: %w", q.Range, err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()

	subprocess, err := cmd.RunLog(
		ctx,
		r.root,
		q.Range.String(),
		q.Paths,
		q.Filters,
		r.useMailmap,
	)
	if err != nil {
		return nil, err
	}

	lines, finishScan := subprocess.StdoutLines()
	seq, finishParse := ParseCommits(lines)
	commits := slices.Collect(seq)

	if err = errors.Join(finishScan(), finishParse()); err != nil {
		// Stop git in case it is still blocked writing to us
		cancel()
		subprocess.Wait()
		return nil, err
	}

	err = subprocess.Wait()
	if err != nil {
		return nil, err
	}

	logger().Debug(
		"got commits",
		"range",
		q.Range.String(),
		"count",
		len(commits),
		"duration_ms",
		time.Since(start).Milliseconds(),
	)
	return commits, nil
}

// Looks up one-line summaries for the given commits.
func (r *Repo) Summaries(ctx context.Context, revs []string) (_ []Summary, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error getting commit summaries: %w", err)
		}
	}()

	if len(revs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	subprocess, err := cmd.RunShow(ctx, r.root, revs)
	if err != nil {
		return nil, err
	}

	lines, finishScan := subprocess.StdoutLines()
	seq, finishParse := ParseSummaries(lines)
	summaries := slices.Collect(seq)

	if err = errors.Join(finishScan(), finishParse()); err != nil {
		cancel()
		subprocess.Wait()
		return nil, err
	}

	err = subprocess.Wait()
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// Resolves a revision (tag, branch, HEAD...) to the hash of the commit it
// points at.
func (r *Repo) ResolveCommit(ctx context.Context, rev string) (_ string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("could not resolve %q: %w", rev, err)
		}
	}()

	subprocess, err := cmd.RunRevParseVerify(ctx, r.root, rev+"^{commit}")
	if err != nil {
		return "", err
	}

	sha, err := subprocess.StdoutText()
	if err != nil {
		return "", err
	}

	err = subprocess.Wait()
	if err != nil {
		return "", err
	}

	return sha, nil
}

// Lists tags matching pattern (all tags if empty), oldest first.
func (r *Repo) Tags(ctx context.Context, pattern string) (_ []string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error listing tags: %w", err)
		}
	}()

	subprocess, err := cmd.RunTagList(ctx, r.root, pattern)
	if err != nil {
		return nil, err
	}

	tags := []string{}

	lines, finish := subprocess.StdoutLines()
	for line := range lines {
		if tag := strings.TrimSpace(line); tag != "" {
			tags = append(tags, tag)
		}
	}

	err = finish()
	if err != nil {
		return nil, err
	}

	err = subprocess.Wait()
	if err != nil {
		return nil, err
	}

	return tags, nil
}

// Adds the content of the mailmap in use (if any) to h, so that cached results
// computed under a different mailmap are not reused.
func (r *Repo) MailmapHash(h hash.Hash) error {
	if !r.useMailmap {
		return nil
	}

	f, err := os.Open(r.mailmapPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("could not read mailmap file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(h, f)
	if err != nil {
		return fmt.Errorf("error hashing mailmap file: %w", err)
	}

	return nil
}

// Returns the path of the mailmap git would use, or "" if there is none.
//
// NOTE: The repo-local .mailmap wins over mailmap.file from the git config.
// Git actually merges the two, but one is almost always enough.
func detectMailmap(ctx context.Context, root string) (string, error) {
	repoMailmap := filepath.Join(root, ".mailmap")
	_, err := os.Stat(repoMailmap)
	if err == nil {
		return repoMailmap, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	subprocess, err := cmd.RunConfigGet(
		ctx,
		root,
		[]string{"--type=path", "mailmap.file"},
	)
	if err != nil {
		return "", err
	}

	p, err := subprocess.StdoutText()
	if err != nil {
		return "", err
	}

	err = subprocess.Wait()
	if err != nil {
		var subprocessErr cmd.SubprocessErr
		if errors.As(err, &subprocessErr) {
			// git config --get exits 1 when the key is unset
			logger().Debug(
				"no mailmap.file in git config",
				"exitcode",
				subprocessErr.ExitCode,
			)
			return "", nil
		}

		return "", err
	}

	if p == "" {
		return "", nil
	}

	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return p, nil
}
