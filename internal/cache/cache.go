// Caches the commits found in a range so that repeat reports over the same
// tags don't have to run git log again.
//
// Released tags don't move, so the commits between two of them never change.
// Entries are keyed by the resolved commit hashes rather than the tag names in
// case a tag is deleted and recreated somewhere else.
package cache

import (
	"fmt"
	"time"

	"github.com/sinclairtarget/git-tagstats/internal/git"
)

type Backend interface {
	Name() string
	Open() error
	Close() error
	Get(key string) ([]git.Commit, bool, error)
	Add(key string, commits []git.Commit) error
	Clear() error
}

type Cache struct {
	backend Backend
}

func NewCache(backend Backend) Cache {
	logger().Debug(fmt.Sprintf("using backend %s", backend.Name()))
	return Cache{backend: backend}
}

func (c Cache) Name() string {
	return c.backend.Name()
}

func (c Cache) Open() error {
	return c.backend.Open()
}

func (c Cache) Close() error {
	return c.backend.Close()
}

func (c Cache) Get(key string) ([]git.Commit, bool, error) {
	start := time.Now()

	commits, hit, err := c.backend.Get(key)
	if err != nil {
		return nil, false, err
	}

	logger().Debug(
		"cache get",
		"key",
		key,
		"duration_ms",
		time.Since(start).Milliseconds(),
		"hit",
		hit,
	)

	return commits, hit, nil
}

func (c Cache) Add(key string, commits []git.Commit) error {
	start := time.Now()

	err := c.backend.Add(key, commits)
	if err != nil {
		return err
	}

	logger().Debug(
		"cache add",
		"key",
		key,
		"commits",
		len(commits),
		"duration_ms",
		time.Since(start).Milliseconds(),
	)

	return nil
}

func (c Cache) Clear() error {
	return c.backend.Clear()
}
