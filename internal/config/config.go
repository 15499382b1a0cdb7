package config

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSort        = "given"
	DefaultBinary      = "zero"
	DefaultConcurrency = 1
	DefaultColor       = "auto"

	// Name of the group used when none are configured.
	DefaultGroupName = "all"
)

// Settings for one report run. Field tags use mapstructure for viper and yaml
// for printing the effective config back out.
type Config struct {
	Tags        []string      `mapstructure:"tags"         yaml:"tags"`
	TagPattern  string        `mapstructure:"tag_pattern"  yaml:"tag_pattern"`
	Sort        string        `mapstructure:"sort"         yaml:"sort"`
	Paths       []string      `mapstructure:"paths"        yaml:"paths"`
	Grep        []string      `mapstructure:"grep"         yaml:"grep"`
	IgnoreCase  bool          `mapstructure:"ignore_case"  yaml:"ignore_case"`
	Groups      []GroupConfig `mapstructure:"groups"       yaml:"groups"`
	Binary      string        `mapstructure:"binary"       yaml:"binary"`
	Concurrency int           `mapstructure:"concurrency"  yaml:"concurrency"`
	KeepGoing   bool          `mapstructure:"keep_going"   yaml:"keep_going"`
	Mailmap     bool          `mapstructure:"mailmap"      yaml:"mailmap"`
	Cache       CacheConfig   `mapstructure:"cache"        yaml:"cache"`
	Color       string        `mapstructure:"color"        yaml:"color"`
}

// A named set of authors, matched by substrings of their email.
type GroupConfig struct {
	Name  string   `mapstructure:"name"  yaml:"name"`
	Allow []string `mapstructure:"allow" yaml:"allow,omitempty"`
	Deny  []string `mapstructure:"deny"  yaml:"deny,omitempty"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path,omitempty"` // Defaults to the user cache dir
}

var (
	ErrInvalidSort        = errors.New("sort must be one of given, semver")
	ErrInvalidBinary      = errors.New("binary must be one of zero, skip")
	ErrInvalidConcurrency = errors.New("concurrency must be non-negative")
	ErrInvalidColor       = errors.New("color must be one of auto, always, never")
	ErrEmptyGroupName     = errors.New("groups must have a name")
	ErrDuplicateGroup     = errors.New("group names must be unique")
	ErrEmptyPattern       = errors.New("allow and deny patterns must not be empty")
	ErrEmptyGrep          = errors.New("grep patterns must not be empty")
)

// Checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"", "given", "semver"}, c.Sort) {
		return fmt.Errorf("%w: got %q", ErrInvalidSort, c.Sort)
	}

	if !slices.Contains([]string{"", "zero", "skip"}, c.Binary) {
		return fmt.Errorf("%w: got %q", ErrInvalidBinary, c.Binary)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Concurrency)
	}

	if !slices.Contains([]string{"", "auto", "always", "never"}, c.Color) {
		return fmt.Errorf("%w: got %q", ErrInvalidColor, c.Color)
	}

	if slices.Contains(c.Grep, "") {
		return ErrEmptyGrep
	}

	seen := map[string]bool{}
	for _, g := range c.Groups {
		if g.Name == "" {
			return ErrEmptyGroupName
		}

		if seen[g.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateGroup, g.Name)
		}
		seen[g.Name] = true

		// An empty substring matches everyone, which is never what was meant
		if slices.Contains(g.Allow, "") || slices.Contains(g.Deny, "") {
			return fmt.Errorf("group %q: %w", g.Name, ErrEmptyPattern)
		}
	}

	return nil
}

// The configured groups, or a single group matching everyone if there are
// none.
func (c *Config) EffectiveGroups() []GroupConfig {
	if len(c.Groups) == 0 {
		return []GroupConfig{{Name: DefaultGroupName}}
	}

	return c.Groups
}

// The config as YAML, with the effective groups filled in.
func (c *Config) YAML() ([]byte, error) {
	effective := *c
	effective.Groups = c.EffectiveGroups()

	out, err := yaml.Marshal(&effective)
	if err != nil {
		return nil, fmt.Errorf("could not marshal config: %w", err)
	}

	return out, nil
}
