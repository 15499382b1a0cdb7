package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sinclairtarget/git-tagstats/internal/cache"
	"github.com/sinclairtarget/git-tagstats/internal/config"
	"github.com/sinclairtarget/git-tagstats/internal/git"
	"github.com/sinclairtarget/git-tagstats/internal/pretty"
	"github.com/sinclairtarget/git-tagstats/internal/report"
	"github.com/sinclairtarget/git-tagstats/internal/tags"
	"github.com/sinclairtarget/git-tagstats/internal/tally"
)

var ErrTooFewTags = errors.New("need at least two tags")

// Everything a subcommand needs to look at a repository.
type session struct {
	cfg    *config.Config
	repo   *git.Repo
	source report.CommitSource
	tags   []string
	cache  cache.Cache
}

// Loads config, opens the repository and works out which tags to report on.
// Call close() when done.
func openSession(
	ctx context.Context,
	cmd *cobra.Command,
	flags *globalFlags,
	args []string,
) (_ *session, err error) {
	cfg, err := config.Load(flags.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	configureColor(cfg, flags)

	repo, err := git.OpenRepo(ctx, flags.repoDir, cfg.Mailmap)
	if err != nil {
		return nil, err
	}

	tagList, err := resolveTags(ctx, repo, cfg, args)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, repo: repo, tags: tagList}

	s.cache = getCache(cfg, repo.Root(), flags.clearCache)
	if cfg.Cache.Enabled {
		s.source = cache.NewSource(repo, s.cache)
	} else {
		s.source = repo
	}

	logger().Debug(
		"opened session",
		"repo",
		repo.Root(),
		"tags",
		tagList,
		"cache",
		s.cache.Name(),
	)
	return s, nil
}

func (s *session) close() error {
	return s.cache.Close()
}

func (s *session) filters() git.LogFilters {
	return git.LogFilters{
		Grep:       s.cfg.Grep,
		IgnoreCase: s.cfg.IgnoreCase,
	}
}

func (s *session) query(rng git.Range) git.Query {
	return git.Query{
		Range:   rng,
		Paths:   s.cfg.Paths,
		Filters: s.filters(),
	}
}

func (s *session) report(showProgress bool) (*report.Report, error) {
	binary, err := report.ParseBinaryPolicy(s.cfg.Binary)
	if err != nil {
		return nil, err
	}

	groups := []*tally.Group{}
	for _, g := range s.cfg.EffectiveGroups() {
		groups = append(groups, tally.NewGroup(g.Name, g.Allow, g.Deny, nil))
	}

	opts := report.Options{
		Paths:       s.cfg.Paths,
		Filters:     s.filters(),
		Binary:      binary,
		Concurrency: s.cfg.Concurrency,
		KeepGoing:   s.cfg.KeepGoing,
	}

	if showProgress && pretty.AllowDynamic(os.Stderr) {
		opts.Progress = os.Stderr
	}

	return report.New(s.source, s.tags, groups, opts), nil
}

// Tags from args, else from config, else every tag matching the configured
// pattern. Then sorted as configured.
func resolveTags(
	ctx context.Context,
	repo *git.Repo,
	cfg *config.Config,
	args []string,
) ([]string, error) {
	var tagList []string
	switch {
	case len(args) > 0:
		tagList = args
	case len(cfg.Tags) > 0:
		tagList = cfg.Tags
	default:
		var err error
		tagList, err = repo.Tags(ctx, cfg.TagPattern)
		if err != nil {
			return nil, err
		}
	}

	sorted, err := tags.Sort(tagList, cfg.Sort)
	if err != nil {
		return nil, err
	}

	if len(sorted) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewTags, len(sorted))
	}

	return sorted, nil
}

func configureColor(cfg *config.Config, flags *globalFlags) {
	switch {
	case flags.noColor || cfg.Color == "never":
		pretty.SetColorEnabled(false)
	case cfg.Color == "always":
		pretty.SetColorEnabled(true)
	default:
		pretty.SetColorEnabled(pretty.AllowDynamic(os.Stdout))
	}
}
