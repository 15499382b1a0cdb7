package tally_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sinclairtarget/git-tagstats/internal/tally"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(
		&buf,
		&slog.HandlerOptions{Level: slog.LevelDebug},
	)
	return slog.New(handler), &buf
}

func TestSubstringMatcher(t *testing.T) {
	tests := []struct {
		name     string
		allow    []string
		deny     []string
		identity string
		expected bool
	}{
		{"empty lists match all", nil, nil, "a@x.com", true},
		{"allow hit", []string{"x.com"}, nil, "a@x.com", true},
		{"allow miss", []string{"y.com"}, nil, "a@x.com", false},
		{"any allow hit", []string{"y.com", "x.com"}, nil, "a@x.com", true},
		{"deny beats allow", []string{"x.com"}, []string{"a@"}, "a@x.com", false},
		{"deny with empty allow", nil, []string{"bot"}, "bot@x.com", false},
		{"deny miss", nil, []string{"bot"}, "a@x.com", true},
		{"case sensitive", []string{"X.COM"}, nil, "a@x.com", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			match := tally.SubstringMatcher(test.allow, test.deny)
			if got := match(test.identity); got != test.expected {
				t.Errorf(
					"match(%q) with allow=%v deny=%v: expected %v but got %v",
					test.identity,
					test.allow,
					test.deny,
					test.expected,
					got,
				)
			}
		})
	}
}

func TestAddCommit(t *testing.T) {
	g := tally.NewGroup("core", []string{"x.com"}, nil, nil)
	g.AddTag("v1.1")

	entries := []struct {
		id     string
		author string
		ins    int
		del    int
		file   string
	}{
		{"c1", "a@x.com", 10, 2, "f.c"},
		{"c1", "a@x.com", 3, 0, "g.c"},
		{"c2", "b@x.com", 1, 1, "f.c"},
		{"c3", "a@x.com", 0, 5, "h.c"},
	}

	for _, e := range entries {
		err := g.AddCommit("v1.1", e.id, e.author, e.ins, e.del, e.file)
		if err != nil {
			t.Fatalf("AddCommit() returned error: %v", err)
		}
	}

	stats, ok := g.Stats("v1.1")
	if !ok {
		t.Fatal("expected stats for v1.1")
	}

	expectedTotals := tally.Totals{Insertions: 14, Deletions: 8, Commits: 3}
	if diff := cmp.Diff(expectedTotals, stats.Totals); diff != "" {
		t.Errorf("totals are wrong:\n%s", diff)
	}

	commits, files, authors, err := g.Commits("v1.1")
	if err != nil {
		t.Fatalf("Commits() returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"c1", "c2", "c3"}, commits); diff != "" {
		t.Errorf("commits are wrong:\n%s", diff)
	}

	expectedFiles := map[string]tally.FileStats{
		"f.c": {Insertions: 11, Deletions: 3, Touches: 2},
		"g.c": {Insertions: 3, Deletions: 0, Touches: 1},
		"h.c": {Insertions: 0, Deletions: 5, Touches: 1},
	}
	if diff := cmp.Diff(expectedFiles, files); diff != "" {
		t.Errorf("files are wrong:\n%s", diff)
	}

	// Counted once per commit, not once per file
	expectedAuthors := map[string]int{"a@x.com": 2, "b@x.com": 1}
	if diff := cmp.Diff(expectedAuthors, authors); diff != "" {
		t.Errorf("authors are wrong:\n%s", diff)
	}
}

func TestFileSumsEqualTotals(t *testing.T) {
	g := tally.NewGroup("all", nil, nil, nil)
	g.AddTag("v2")

	for i, file := range []string{"a", "b", "a", "c", "b", "a"} {
		id := []string{"x", "y", "z"}[i%3]
		err := g.AddCommit("v2", id, "dev@x.com", i*3, i, file)
		if err != nil {
			t.Fatalf("AddCommit() returned error: %v", err)
		}
	}

	stats, _ := g.Stats("v2")

	var ins, del int
	for _, f := range stats.Files {
		ins += f.Insertions
		del += f.Deletions
	}

	if ins != stats.Totals.Insertions || del != stats.Totals.Deletions {
		t.Errorf(
			"file sums (%d, %d) do not match totals (%d, %d)",
			ins,
			del,
			stats.Totals.Insertions,
			stats.Totals.Deletions,
		)
	}
}

func TestAddCommitWithoutTag(t *testing.T) {
	g := tally.NewGroup("core", nil, nil, nil)

	err := g.AddCommit("v1.1", "c1", "a@x.com", 1, 1, "f.c")
	if !errors.Is(err, tally.ErrTagNotAdded) {
		t.Fatalf("expected ErrTagNotAdded but got %v", err)
	}

	if _, ok := g.Stats("v1.1"); ok {
		t.Error("AddCommit() should not create stats for an unknown tag")
	}
}

func TestCommitsUnknownTag(t *testing.T) {
	g := tally.NewGroup("core", nil, nil, nil)

	_, _, _, err := g.Commits("nope")
	if !errors.Is(err, tally.ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound but got %v", err)
	}
}

func TestAddTagTwiceWarnsAndResets(t *testing.T) {
	logger, buf := captureLogger()
	g := tally.NewGroup("core", nil, nil, logger)

	g.AddTag("v1.1")
	err := g.AddCommit("v1.1", "c1", "a@x.com", 1, 1, "f.c")
	if err != nil {
		t.Fatalf("AddCommit() returned error: %v", err)
	}

	if buf.Len() != 0 {
		t.Fatalf("expected no warnings yet but got: %s", buf.String())
	}

	g.AddTag("v1.1")

	out := buf.String()
	if !strings.Contains(out, "level=WARN") ||
		!strings.Contains(out, "tag=v1.1") ||
		!strings.Contains(out, "group=core") {
		t.Errorf("expected reinitialization warning but got: %s", out)
	}

	stats, _ := g.Stats("v1.1")
	if !stats.IsEmpty() || stats.Totals != (tally.Totals{}) {
		t.Errorf("expected stats to be reset but got %+v", stats.Totals)
	}
}

func TestCommitsReturnsCopies(t *testing.T) {
	g := tally.NewGroup("core", nil, nil, nil)
	g.AddTag("v1")
	g.AddCommit("v1", "c1", "a@x.com", 1, 0, "f.c")

	commits, files, authors, _ := g.Commits("v1")
	commits[0] = "changed"
	files["other"] = tally.FileStats{}
	authors["other"] = 9

	stats, _ := g.Stats("v1")
	if stats.Commits[0] != "c1" ||
		stats.FileCount() != 1 ||
		stats.AuthorCount() != 1 {
		t.Error("mutating returned values changed the group's stats")
	}
}

func TestRankAuthors(t *testing.T) {
	g := tally.NewGroup("core", nil, nil, nil)
	g.AddTag("v1")
	g.AddCommit("v1", "c1", "b@x.com", 1, 0, "f.c")
	g.AddCommit("v1", "c2", "a@x.com", 1, 0, "f.c")
	g.AddCommit("v1", "c3", "c@x.com", 1, 0, "f.c")
	g.AddCommit("v1", "c4", "c@x.com", 1, 0, "f.c")

	_, _, authors, err := g.Commits("v1")
	if err != nil {
		t.Fatalf("Commits() returned error: %v", err)
	}

	expected := []tally.AuthorCount{
		{Author: "c@x.com", Commits: 2},
		{Author: "a@x.com", Commits: 1},
		{Author: "b@x.com", Commits: 1},
	}
	if diff := cmp.Diff(expected, tally.RankAuthors(authors)); diff != "" {
		t.Errorf("ranking is wrong:\n%s", diff)
	}
}
