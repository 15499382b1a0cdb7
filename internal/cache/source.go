package cache

import (
	"context"
	"hash"
	"sync"

	"github.com/sinclairtarget/git-tagstats/internal/git"
)

// What Source needs from the repository. Satisfied by *git.Repo.
type Repository interface {
	Commits(ctx context.Context, q git.Query) ([]git.Commit, error)
	Summaries(ctx context.Context, revs []string) ([]git.Summary, error)
	ResolveCommit(ctx context.Context, rev string) (string, error)
	MailmapHash(h hash.Hash) error
}

// Answers commit queries from the cache when it can and from the repository
// otherwise, remembering what the repository said.
//
// Safe for concurrent use.
type Source struct {
	repo  Repository
	cache Cache
	mu    sync.Mutex
}

func NewSource(repo Repository, cache Cache) *Source {
	return &Source{repo: repo, cache: cache}
}

func (s *Source) Commits(ctx context.Context, q git.Query) ([]git.Commit, error) {
	key, err := s.key(ctx, q)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	commits, hit, err := s.cache.Get(key)
	s.mu.Unlock()

	if err != nil {
		// A broken cache shouldn't break the report
		logger().Warn(
			"failed to read from cache",
			"range",
			q.Range.String(),
			"error",
			err,
		)
	} else if hit {
		return commits, nil
	}

	commits, err = s.repo.Commits(ctx, q)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = s.cache.Add(key, commits)
	s.mu.Unlock()

	if err != nil {
		logger().Warn(
			"failed to write to cache",
			"range",
			q.Range.String(),
			"error",
			err,
		)
	}

	return commits, nil
}

func (s *Source) Summaries(ctx context.Context, revs []string) ([]git.Summary, error) {
	return s.repo.Summaries(ctx, revs)
}

func (s *Source) key(ctx context.Context, q git.Query) (string, error) {
	fromHash, err := s.repo.ResolveCommit(ctx, q.Range.From)
	if err != nil {
		return "", err
	}

	toHash, err := s.repo.ResolveCommit(ctx, q.Range.To)
	if err != nil {
		return "", err
	}

	return QueryKey(fromHash, toHash, q, s.repo.MailmapHash)
}
