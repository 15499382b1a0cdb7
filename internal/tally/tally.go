// Handles summations over the commits between tags.
package tally

import (
	"slices"
	"strings"
)

// Running totals for a tag.
type Totals struct {
	Insertions int
	Deletions  int
	Commits    int // Distinct commits, not file entries
}

// Totals for a single path within a tag.
type FileStats struct {
	Insertions int
	Deletions  int
	Touches    int // Num qualifying file entries, i.e. commits touching the path
}

// Everything accumulated for one group between the previous tag and this one.
type TagStats struct {
	Totals  Totals
	Commits []string             // Commit hashes, in the order first seen
	Files   map[string]FileStats // Keyed by path
	Authors map[string]int       // Author identity to num commits
	seen    map[string]bool
}

func newTagStats() *TagStats {
	return &TagStats{
		Commits: []string{},
		Files:   map[string]FileStats{},
		Authors: map[string]int{},
		seen:    map[string]bool{},
	}
}

func (s *TagStats) IsEmpty() bool {
	return len(s.Commits) == 0
}

func (s *TagStats) FileCount() int {
	return len(s.Files)
}

func (s *TagStats) AuthorCount() int {
	return len(s.Authors)
}

type AuthorCount struct {
	Author  string
	Commits int
}

// Authors with the most commits first. Ties are broken by identity.
func RankAuthors(authors map[string]int) []AuthorCount {
	ranked := make([]AuthorCount, 0, len(authors))
	for author, n := range authors {
		ranked = append(ranked, AuthorCount{Author: author, Commits: n})
	}

	slices.SortFunc(ranked, func(a, b AuthorCount) int {
		if a.Commits != b.Commits {
			return b.Commits - a.Commits
		}

		return strings.Compare(a.Author, b.Author)
	})
	return ranked
}

// Adds one file entry of a commit. Commit and author counts only move the
// first time a given commit is seen.
func (s *TagStats) add(
	id string,
	author string,
	insertions int,
	deletions int,
	filename string,
) {
	if !s.seen[id] {
		s.seen[id] = true
		s.Commits = append(s.Commits, id)
		s.Totals.Commits += 1
		s.Authors[author] += 1
	}

	s.Totals.Insertions += insertions
	s.Totals.Deletions += deletions

	file := s.Files[filename]
	file.Insertions += insertions
	file.Deletions += deletions
	file.Touches += 1
	s.Files[filename] = file
}
