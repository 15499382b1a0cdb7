/*
* Handles invoking Git as a subprocess.
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Each commit header starts with an ASCII record separator and its fields are
// split by unit separators. Neither shows up in names, emails or subjects.
const (
	logFormat        = "--pretty=format:%x1e%H%x1f%h%x1f%an%x1f%ae%x1f%s"
	mailmapLogFormat = "--pretty=format:%x1e%H%x1f%h%x1f%aN%x1f%aE%x1f%s"
	showFormat       = "--format=%x1e%h%x1f%s"
)

// Runs git log over a single revision range, e.g. "v1.0..v1.1".
//
// Merge commits are excluded here rather than by the caller. Commits come back
// oldest first.
func RunLog(
	ctx context.Context,
	dir string,
	revRange string,
	pathspecs []string,
	filters LogFilters,
	useMailmap bool,
) (*Subprocess, error) {
	if revRange == "" {
		return nil, errors.New("git log requires a revision range")
	}

	var baseArgs []string
	if useMailmap {
		baseArgs = []string{
			"log",
			mailmapLogFormat,
			"--no-merges",
			"--numstat",
			"--reverse",
			"--no-color",
			"--no-show-signature",
		}
	} else {
		baseArgs = []string{
			"log",
			logFormat,
			"--no-merges",
			"--numstat",
			"--reverse",
			"--no-color",
			"--no-show-signature",
			"--no-mailmap",
		}
	}

	filterArgs := filters.ToArgs()

	var args []string
	if len(pathspecs) > 0 {
		args = slices.Concat(
			baseArgs,
			filterArgs,
			[]string{revRange, "--"},
			pathspecs,
		)
	} else {
		args = slices.Concat(baseArgs, filterArgs, []string{revRange})
	}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git log: %w", err)
	}

	return subprocess, nil
}

// Runs git show for one-line summaries plus shortstat of the given commits.
func RunShow(
	ctx context.Context,
	dir string,
	revs []string,
) (*Subprocess, error) {
	if len(revs) == 0 {
		return nil, errors.New("git show requires at least one revision")
	}

	baseArgs := []string{
		"show",
		showFormat,
		"--shortstat",
		"--no-color",
		"--no-show-signature",
	}

	subprocess, err := run(ctx, dir, slices.Concat(baseArgs, revs))
	if err != nil {
		return nil, fmt.Errorf("failed to run git show: %w", err)
	}

	return subprocess, nil
}

// Lists tags matching pattern, oldest first by creation date.
func RunTagList(
	ctx context.Context,
	dir string,
	pattern string,
) (*Subprocess, error) {
	args := []string{"tag", "--list", "--sort=creatordate"}
	if pattern != "" {
		args = append(args, pattern)
	}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git tag: %w", err)
	}

	return subprocess, nil
}

// Runs git rev-parse --verify on a single revision.
func RunRevParseVerify(
	ctx context.Context,
	dir string,
	rev string,
) (*Subprocess, error) {
	var args = []string{"rev-parse", "--verify", "--quiet", rev}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git rev-parse: %w", err)
	}

	return subprocess, nil
}

func RunRevParseTopLevel(ctx context.Context, dir string) (*Subprocess, error) {
	var args = []string{"rev-parse", "--show-toplevel"}

	subprocess, err := run(ctx, dir, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run git rev-parse: %w", err)
	}

	return subprocess, nil
}

func RunConfigGet(
	ctx context.Context,
	dir string,
	args []string,
) (*Subprocess, error) {
	var baseArgs = []string{"config", "--get"}

	subprocess, err := run(ctx, dir, slices.Concat(baseArgs, args))
	if err != nil {
		return nil, fmt.Errorf("failed to run git config: %w", err)
	}

	return subprocess, nil
}
