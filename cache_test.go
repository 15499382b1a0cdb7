package main

import (
	"path/filepath"
	"testing"

	"github.com/sinclairtarget/git-tagstats/internal/cache/backends"
	"github.com/sinclairtarget/git-tagstats/internal/config"
	"github.com/sinclairtarget/git-tagstats/internal/git"
)

func seededConfig(t *testing.T) *config.Config {
	t.Helper()

	p := filepath.Join(t.TempDir(), "commits.ndjson")
	seed := backends.JSONBackend{Path: p}
	if err := seed.Open(); err != nil {
		t.Fatalf("could not open cache: %v", err)
	}

	commits := []git.Commit{{Hash: "9e9ea7662b1001d860471a4cece5e2f1de8062fb"}}
	if err := seed.Add("abc", commits); err != nil {
		t.Fatalf("could not seed cache: %v", err)
	}

	return &config.Config{
		Cache: config.CacheConfig{Enabled: true, Path: p},
	}
}

func TestGetCacheKeepsEntries(t *testing.T) {
	c := getCache(seededConfig(t), "/repo", false)
	defer c.Close()

	if c.Name() != "json" {
		t.Fatalf("expected json cache, got %s", c.Name())
	}

	_, hit, err := c.Get("abc")
	if err != nil || !hit {
		t.Errorf("expected hit, got hit=%v err=%v", hit, err)
	}
}

func TestGetCacheClear(t *testing.T) {
	c := getCache(seededConfig(t), "/repo", true)
	defer c.Close()

	if c.Name() != "json" {
		t.Fatalf("expected json cache, got %s", c.Name())
	}

	_, hit, err := c.Get("abc")
	if err != nil || hit {
		t.Errorf("expected miss after clear, got hit=%v err=%v", hit, err)
	}
}

func TestGetCacheDisabled(t *testing.T) {
	c := getCache(&config.Config{}, "/repo", true)

	if c.Name() != "noop" {
		t.Errorf("expected noop cache, got %s", c.Name())
	}
}
