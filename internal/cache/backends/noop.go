package backends

import (
	"github.com/sinclairtarget/git-tagstats/internal/git"
)

// Caches nothing.
type NoopBackend struct{}

func (b NoopBackend) Name() string {
	return "noop"
}

func (b NoopBackend) Open() error {
	return nil
}

func (b NoopBackend) Close() error {
	return nil
}

func (b NoopBackend) Get(key string) ([]git.Commit, bool, error) {
	return nil, false, nil
}

func (b NoopBackend) Add(key string, commits []git.Commit) error {
	return nil
}

func (b NoopBackend) Clear() error {
	return nil
}
