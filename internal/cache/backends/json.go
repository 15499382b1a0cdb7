package backends

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sinclairtarget/git-tagstats/internal/git"
)

// Stores the commits for each cached range on disk at a particular filepath.
//
// Each range is one line of newline-delimited JSON. Get reads through the
// whole file; reports only ever cover a handful of ranges so this stays small.
type JSONBackend struct {
	Path string
}

type jsonEntry struct {
	Key     string       `json:"key"`
	Commits []git.Commit `json:"commits"`
}

func (b JSONBackend) Name() string {
	return "json"
}

func (b JSONBackend) Open() error {
	err := os.MkdirAll(filepath.Dir(b.Path), 0o700)
	if err != nil {
		return fmt.Errorf("could not create cache dir: %w", err)
	}

	return nil
}

func (b JSONBackend) Close() error {
	return nil
}

func (b JSONBackend) Get(key string) ([]git.Commit, bool, error) {
	f, err := os.Open(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		// If file doesn't exist, don't treat as an error
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	defer f.Close() // Don't care about error closing when reading

	dec := json.NewDecoder(f)

	var found []git.Commit
	hit := false

	for {
		var entry jsonEntry

		err = dec.Decode(&entry)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, false, fmt.Errorf("corrupt cache file: %w", err)
		}

		// Later entries win
		if entry.Key == key {
			found = entry.Commits
			hit = true
		}
	}

	if hit && found == nil {
		found = []git.Commit{}
	}

	return found, hit, nil
}

func (b JSONBackend) Add(key string, commits []git.Commit) (err error) {
	f, err := os.OpenFile(
		b.Path,
		os.O_WRONLY|os.O_APPEND|os.O_CREATE,
		0o644,
	)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()

	enc := json.NewEncoder(f)
	return enc.Encode(jsonEntry{Key: key, Commits: commits})
}

func (b JSONBackend) Clear() error {
	err := os.Remove(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
