package cache

import (
	"encoding/hex"
	"fmt"
	"hash"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sinclairtarget/git-tagstats/internal/git"
)

// Computes the cache key for the results of q, given the commit hashes its
// range resolved to.
//
// extra can add anything else that changes git log's output (like the
// mailmap) to the hash. It may be nil.
func QueryKey(
	fromHash string,
	toHash string,
	q git.Query,
	extra func(h hash.Hash) error,
) (string, error) {
	h := fnv.New64a()

	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(fromHash)
	write(toHash)

	write(strconv.Itoa(len(q.Paths)))
	for _, path := range q.Paths {
		write(path)
	}

	write(strconv.Itoa(len(q.Filters.Grep)))
	for _, pattern := range q.Filters.Grep {
		write(pattern)
	}
	write(strconv.FormatBool(q.Filters.IgnoreCase))

	if extra != nil {
		if err := extra(h); err != nil {
			return "", fmt.Errorf("could not compute cache key: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Default location of the cache file for the repository at gitRootPath.
func DefaultPath(gitRootPath string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("could not find user cache dir: %w", err)
	}

	// Filename includes hash of path to repo so we don't collide with caches
	// for other repos.
	h := fnv.New32()
	h.Write([]byte(gitRootPath))

	base := filepath.Base(gitRootPath)
	filename := fmt.Sprintf("%s-%x.ndjson", base, h.Sum32())
	return filepath.Join(dir, "git-tagstats", filename), nil
}
