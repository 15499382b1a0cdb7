package git

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

var fileRenameRegexp *regexp.Regexp

func init() {
	fileRenameRegexp = regexp.MustCompile(`{(.*) => (.*)}`)
}

// A --numstat line that could not be parsed. These are not fatal: the line is
// kept on the commit so the caller can warn about it and move on.
type StatError struct {
	Commit string
	Line   string
	Reason string
}

func (e StatError) Error() string {
	return fmt.Sprintf(
		"bad numstat line %q in commit %s: %s",
		e.Line,
		e.Commit,
		e.Reason,
	)
}

// Splits a path from git log --numstat on "/", while ignoring "/" surrounded
// by "{" and "}".
func splitPath(path string) []string {
	parts := []string{}
	var b strings.Builder
	var inBrackets bool

	for _, c := range path {
		if c == '/' && !inBrackets {
			parts = append(parts, b.String())
			b.Reset()
			continue
		}

		if c == '{' {
			inBrackets = true
		} else if c == '}' {
			inBrackets = false
		}

		b.WriteRune(c)
	}

	if b.Len() > 0 {
		parts = append(parts, b.String())
	}

	return parts
}

// Parse the path given by git log --numstat for a file diff.
//
// Sometimes this looks like foo/{bar => bim}/baz.txt when a file is moved.
// Returns the path before and after the change; they are equal unless the
// file was renamed.
func parseDiffPath(path string) (before string, after string, err error) {
	if !strings.Contains(path, " => ") {
		return path, path, nil
	}

	if !strings.Contains(path, "}") {
		// Simple case
		parts := strings.Split(path, " => ")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("error parsing diff path from \"%s\" path", path)
		}
		return parts[0], parts[1], nil
	}

	var beforeBuilder strings.Builder
	var afterBuilder strings.Builder

	parts := splitPath(path)
	for i, part := range parts {
		last := i == len(parts)-1

		if strings.Contains(part, "=>") {
			matches := fileRenameRegexp.FindStringSubmatch(part)
			if matches == nil || len(matches) != 3 {
				return "", "", fmt.Errorf(
					"error parsing rename from \"%s\" in path \"%s\"",
					part,
					path,
				)
			}

			beforeBuilder.WriteString(matches[1])
			afterBuilder.WriteString(matches[2])

			if !last {
				if matches[1] != "" {
					beforeBuilder.WriteRune('/')
				}
				if matches[2] != "" {
					afterBuilder.WriteRune('/')
				}
			}
		} else {
			beforeBuilder.WriteString(part)
			afterBuilder.WriteString(part)

			if !last {
				beforeBuilder.WriteRune('/')
				afterBuilder.WriteRune('/')
			}
		}
	}

	return beforeBuilder.String(), afterBuilder.String(), nil
}

// git quotes paths containing unusual characters, C-style.
func unquotePath(path string) string {
	if len(path) < 2 || path[0] != '"' || path[len(path)-1] != '"' {
		return path
	}

	unquoted, err := strconv.Unquote(path)
	if err != nil {
		return path
	}

	return unquoted
}

func parseLinesChanged(s string) (n int, isBinary bool, err error) {
	if s == "-" {
		return 0, true, nil
	}

	n, err = strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%q is not a line count", s)
	}

	if n < 0 {
		return 0, false, fmt.Errorf("negative line count %d", n)
	}

	return n, false, nil
}

func parseStatLine(line string) (FileDiff, error) {
	var diff FileDiff

	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return diff, fmt.Errorf("expected 3 fields but found %d", len(parts))
	}

	added, addedBinary, err := parseLinesChanged(parts[0])
	if err != nil {
		return diff, err
	}

	removed, removedBinary, err := parseLinesChanged(parts[1])
	if err != nil {
		return diff, err
	}

	path := unquotePath(parts[2])
	if path == "" {
		return diff, errors.New("missing path")
	}

	before, after, err := parseDiffPath(path)
	if err != nil {
		return diff, err
	}

	diff.Path = after
	if before != after {
		diff.OldPath = before
	}
	diff.LinesAdded = added
	diff.LinesRemoved = removed
	diff.IsBinary = addedBinary || removedBinary
	return diff, nil
}

func parseHeader(line string) (Commit, error) {
	var commit Commit

	fields := strings.SplitN(strings.TrimPrefix(line, recordSep), fieldSep, 5)
	if len(fields) < 4 || fields[0] == "" {
		return commit, fmt.Errorf("malformed commit header %q", line)
	}

	commit.Hash = fields[0]
	commit.ShortHash = fields[1]
	commit.AuthorName = fields[2]
	commit.AuthorEmail = fields[3]
	if len(fields) == 5 {
		commit.Subject = fields[4]
	}

	return commit, nil
}

// Turns an iterator over lines from git log into an iterator of commits.
//
// A bad header ends iteration with an error returned from the finish func. A
// bad numstat line is recorded in Commit.BadStats and parsing carries on.
func ParseCommits(lines iter.Seq[string]) (iter.Seq[Commit], func() error) {
	var iterErr error

	seq := func(yield func(Commit) bool) {
		var commit Commit
		started := false

		for line := range lines {
			if strings.HasPrefix(line, recordSep) {
				if started && !yield(commit) {
					return
				}

				var err error
				commit, err = parseHeader(line)
				if err != nil {
					iterErr = err
					return
				}

				started = true
				continue
			}

			if strings.TrimSpace(line) == "" {
				continue
			}

			if !started {
				iterErr = fmt.Errorf("numstat line %q before any commit", line)
				return
			}

			diff, err := parseStatLine(line)
			if err != nil {
				commit.BadStats = append(commit.BadStats, StatError{
					Commit: commit.Name(),
					Line:   line,
					Reason: err.Error(),
				})
				continue
			}

			commit.FileDiffs = append(commit.FileDiffs, diff)
		}

		if started {
			yield(commit)
		}
	}

	finish := func() error {
		if iterErr != nil {
			return fmt.Errorf("error parsing commits: %w", iterErr)
		}

		return nil
	}

	return seq, finish
}

// Turns the output of git show --shortstat into summaries, in the order git
// printed them.
func ParseSummaries(lines iter.Seq[string]) (iter.Seq[Summary], func() error) {
	var iterErr error

	seq := func(yield func(Summary) bool) {
		var summary Summary
		started := false

		for line := range lines {
			if strings.HasPrefix(line, recordSep) {
				if started && !yield(summary) {
					return
				}

				fields := strings.SplitN(
					strings.TrimPrefix(line, recordSep),
					fieldSep,
					2,
				)
				summary = Summary{ShortHash: fields[0]}
				if len(fields) == 2 {
					summary.Subject = fields[1]
				}

				started = true
				continue
			}

			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}

			if !started {
				iterErr = fmt.Errorf("line %q before any commit", line)
				return
			}

			summary.ShortStat = trimmed
		}

		if started {
			yield(summary)
		}
	}

	finish := func() error {
		if iterErr != nil {
			return fmt.Errorf("error parsing summaries: %w", iterErr)
		}

		return nil
	}

	return seq, finish
}
