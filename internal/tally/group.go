package tally

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

var ErrTagNotAdded = errors.New("AddTag() must be called for a tag before AddCommit()")
var ErrTagNotFound = errors.New("tag not found")

// Decides whether an author identity (usually an email) belongs to a group.
type Matcher func(identity string) bool

// Matches identities containing any of the allow substrings (or everything,
// if allow is empty) and none of the deny substrings.
func SubstringMatcher(allow []string, deny []string) Matcher {
	return func(identity string) bool {
		allowed := len(allow) == 0
		for _, s := range allow {
			if strings.Contains(identity, s) {
				allowed = true
				break
			}
		}

		if !allowed {
			return false
		}

		for _, s := range deny {
			if strings.Contains(identity, s) {
				return false
			}
		}

		return true
	}
}

// A named set of authors and the stats accumulated for them per tag.
type Group struct {
	Name   string
	Allow  []string
	Deny   []string
	match  Matcher
	tags   map[string]*TagStats
	logger *slog.Logger
}

// Warnings go to logger, or to the package logger if it is nil.
func NewGroup(
	name string,
	allow []string,
	deny []string,
	logger *slog.Logger,
) *Group {
	if logger == nil {
		logger = pkgLogger()
	}

	return &Group{
		Name:   name,
		Allow:  allow,
		Deny:   deny,
		match:  SubstringMatcher(allow, deny),
		tags:   map[string]*TagStats{},
		logger: logger.With("group", name),
	}
}

func (g *Group) Matches(identity string) bool {
	return g.match(identity)
}

// Starts a fresh tally for tag. Adding a tag twice discards whatever was
// tallied for it the first time.
func (g *Group) AddTag(tag string) {
	if _, ok := g.tags[tag]; ok {
		g.logger.Warn("tag already exists, reinitializing", "tag", tag)
	}

	g.tags[tag] = newTagStats()
}

// Adds one file entry from a commit to the tally for tag.
//
// Call once per file changed in the commit; the commit itself is counted
// once.
func (g *Group) AddCommit(
	tag string,
	id string,
	author string,
	insertions int,
	deletions int,
	filename string,
) error {
	stats, ok := g.tags[tag]
	if !ok {
		return fmt.Errorf("group %s, tag %s: %w", g.Name, tag, ErrTagNotAdded)
	}

	stats.add(id, author, insertions, deletions, filename)
	return nil
}

// Returns the commits, per-file stats and per-author commit counts tallied
// for tag. The returned values are copies.
func (g *Group) Commits(tag string) (
	[]string,
	map[string]FileStats,
	map[string]int,
	error,
) {
	stats, ok := g.tags[tag]
	if !ok {
		return nil, nil, nil, fmt.Errorf(
			"group %s, tag %s: %w",
			g.Name,
			tag,
			ErrTagNotFound,
		)
	}

	return slices.Clone(stats.Commits),
		maps.Clone(stats.Files),
		maps.Clone(stats.Authors),
		nil
}

// Returns the stats for tag, if it was ever added.
func (g *Group) Stats(tag string) (*TagStats, bool) {
	stats, ok := g.tags[tag]
	return stats, ok
}
