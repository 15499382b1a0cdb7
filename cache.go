package main

import (
	"fmt"

	"github.com/sinclairtarget/git-tagstats/internal/cache"
	cacheBackends "github.com/sinclairtarget/git-tagstats/internal/cache/backends"
	"github.com/sinclairtarget/git-tagstats/internal/config"
)

func warnFail(err error) cache.Cache {
	logger().Warn(
		fmt.Sprintf("failed to initialize cache: %v", err),
	)
	logger().Warn("disabling caching")
	return cache.NewCache(cacheBackends.NoopBackend{})
}

// Returns the cache for the repository at repoRoot, opened. If clear is set,
// anything already cached is thrown away first. Caching problems are never
// fatal; we fall back to not caching.
func getCache(cfg *config.Config, repoRoot string, clear bool) cache.Cache {
	if !cfg.Cache.Enabled {
		return cache.NewCache(cacheBackends.NoopBackend{})
	}

	p := cfg.Cache.Path
	if p == "" {
		var err error
		p, err = cache.DefaultPath(repoRoot)
		if err != nil {
			return warnFail(err)
		}
	}

	c := cache.NewCache(cacheBackends.JSONBackend{Path: p})

	if clear {
		if err := c.Clear(); err != nil {
			return warnFail(err)
		}
		logger().Debug("cache cleared", "path", p)
	}

	if err := c.Open(); err != nil {
		return warnFail(err)
	}

	logger().Debug("cache initialized", "path", p)
	return c
}
