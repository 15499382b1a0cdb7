// Builds per-tag commit statistics for groups of authors.
//
// A report walks each consecutive pair of tags, asks a CommitSource for the
// non-merge commits between them and hands every commit to each group whose
// filters match its author.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/multierr"

	"github.com/sinclairtarget/git-tagstats/internal/concurrent"
	"github.com/sinclairtarget/git-tagstats/internal/git"
	"github.com/sinclairtarget/git-tagstats/internal/pretty"
	"github.com/sinclairtarget/git-tagstats/internal/tally"
)

// Where commits come from. Satisfied by *git.Repo and *cache.Source.
type CommitSource interface {
	// Non-merge commits in the query's range, oldest first.
	Commits(ctx context.Context, q git.Query) ([]git.Commit, error)
	Summaries(ctx context.Context, revs []string) ([]git.Summary, error)
}

// What to do with numstat entries for binary files, which have no line
// counts.
type BinaryPolicy int

const (
	BinaryZero BinaryPolicy = iota // Count the touch with 0 insertions/deletions
	BinarySkip                     // Leave the entry out
)

var ErrUnknownBinaryPolicy = errors.New("unknown binary policy")

func ParseBinaryPolicy(s string) (BinaryPolicy, error) {
	switch strings.ToLower(s) {
	case "", "zero":
		return BinaryZero, nil
	case "skip":
		return BinarySkip, nil
	default:
		return BinaryZero, fmt.Errorf("%w: %q", ErrUnknownBinaryPolicy, s)
	}
}

func (p BinaryPolicy) String() string {
	switch p {
	case BinarySkip:
		return "skip"
	default:
		return "zero"
	}
}

// Retrieving the commits for a range failed.
type RangeError struct {
	From string
	To   string
	Err  error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("failed to get commits for %s..%s: %v", e.From, e.To, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

type Options struct {
	Paths   []string       // Pathspecs limiting which files count
	Filters git.LogFilters // Commit message filters
	Binary  BinaryPolicy

	// Max ranges fetched at once. Anything below 2 fetches one at a time.
	Concurrency int

	// Carry on with later ranges after one fails.
	KeepGoing bool

	// Receives warnings. Defaults to the package logger.
	Logger *slog.Logger

	// If set, a progress line is redrawn here as each range is fetched.
	Progress io.Writer
}

type Report struct {
	tags      []string
	groups    []*tally.Group
	source    CommitSource
	opts      Options
	logger    *slog.Logger
	generated bool
}

func New(
	source CommitSource,
	tags []string,
	groups []*tally.Group,
	opts Options,
) *Report {
	logger := opts.Logger
	if logger == nil {
		logger = pkgLogger()
	}

	return &Report{
		tags:   tags,
		groups: groups,
		source: source,
		opts:   opts,
		logger: logger,
	}
}

// Fetches the commits between each consecutive pair of tags and tallies them
// into the groups under the later tag.
//
// A range whose retrieval fails leaves the groups untouched for that tag.
// Unless KeepGoing is set, Generate stops at the first such failure; the
// stats for earlier ranges are kept either way. Returned errors are
// *RangeError, combined with multierr when there is more than one.
func (r *Report) Generate(ctx context.Context) (err error) {
	r.generated = true

	ranges := git.Ranges(r.tags)
	if len(ranges) == 0 {
		r.logger.Warn("need at least two tags to compute stats", "tags", r.tags)
		return nil
	}

	fetch := func(ctx context.Context, i int) ([]git.Commit, error) {
		rng := ranges[i]
		q := git.Query{
			Range:   rng,
			Paths:   r.opts.Paths,
			Filters: r.opts.Filters,
		}

		commits, err := r.source.Commits(ctx, q)
		if err != nil {
			return nil, &RangeError{From: rng.From, To: rng.To, Err: err}
		}

		return commits, nil
	}

	defer r.clearProgress()

	i := 0
	for commits, fetchErr := range concurrent.Ordered(
		ctx,
		len(ranges),
		r.opts.Concurrency,
		fetch,
	) {
		rng := ranges[i]
		i++
		r.showProgress(i, len(ranges), rng)

		if fetchErr != nil {
			// Ranges skipped after cancellation come back with a bare
			// context error
			var rangeErr *RangeError
			if !errors.As(fetchErr, &rangeErr) {
				fetchErr = &RangeError{From: rng.From, To: rng.To, Err: fetchErr}
			}

			err = multierr.Append(err, fetchErr)
			if !r.opts.KeepGoing {
				break
			}

			continue
		}

		r.dispatch(rng.To, commits)
	}

	return err
}

// Tallies the commits of one range into every group that wants them.
func (r *Report) dispatch(tag string, commits []git.Commit) {
	for _, g := range r.groups {
		g.AddTag(tag)
	}

	for _, commit := range commits {
		diffs := r.countedDiffs(tag, commit)

		for _, g := range r.groups {
			if !g.Matches(commit.AuthorEmail) {
				continue
			}

			for _, diff := range diffs {
				err := g.AddCommit(
					tag,
					commit.Hash,
					commit.AuthorEmail,
					diff.LinesAdded,
					diff.LinesRemoved,
					diff.Path,
				)
				if err != nil {
					r.logger.Warn(
						"could not add commit",
						"commit",
						commit.ShortHash,
						"error",
						err,
					)
				}
			}
		}
	}
}

// The file entries of commit that should be tallied. Warns about the ones
// that won't be.
func (r *Report) countedDiffs(tag string, commit git.Commit) []git.FileDiff {
	for _, statErr := range commit.BadStats {
		r.logger.Warn(
			"skipping malformed stat line",
			"tag",
			tag,
			"commit",
			statErr.Commit,
			"line",
			statErr.Line,
			"reason",
			statErr.Reason,
		)
	}

	if r.opts.Binary != BinarySkip {
		return commit.FileDiffs
	}

	diffs := make([]git.FileDiff, 0, len(commit.FileDiffs))
	for _, diff := range commit.FileDiffs {
		if diff.IsBinary {
			r.logger.Warn(
				"skipping binary file",
				"tag",
				tag,
				"commit",
				commit.ShortHash,
				"path",
				diff.Path,
			)
			continue
		}

		diffs = append(diffs, diff)
	}

	return diffs
}

func (r *Report) showProgress(done int, total int, rng git.Range) {
	if r.opts.Progress == nil {
		return
	}

	fmt.Fprintf(
		r.opts.Progress,
		"%s\rFetched %s (%d/%d)...",
		pretty.EraseLine,
		rng,
		done,
		total,
	)
}

func (r *Report) clearProgress() {
	if r.opts.Progress == nil {
		return
	}

	fmt.Fprintf(r.opts.Progress, "%s\r", pretty.EraseLine)
}
