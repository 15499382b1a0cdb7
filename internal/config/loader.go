package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName      = ".tagstats"
	configType      = "yaml"
	envPrefix       = "TAGSTATS"
	envKeySeparator = "_"
)

// Command-line flags that override config keys, by flag name.
var flagKeys = map[string]string{
	"tag-pattern": "tag_pattern",
	"sort":        "sort",
	"path":        "paths",
	"grep":        "grep",
	"ignore-case": "ignore_case",
	"binary":      "binary",
	"concurrency": "concurrency",
	"keep-going":  "keep_going",
	"mailmap":     "mailmap",
	"cache":       "cache.enabled",
	"cache-path":  "cache.path",
	"color":       "color",
}

// Loads configuration from defaults, the config file, TAGSTATS_* env vars and
// any of flags that were set, in increasing order of precedence.
//
// If configPath is empty, .tagstats.yaml is looked for in the working
// directory and then $HOME. A missing config file is not an error. flags may
// be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		logger().Debug("read config file", "path", v.ConfigFileUsed())
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}

			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("tags", []string{})
	v.SetDefault("tag_pattern", "")
	v.SetDefault("sort", DefaultSort)
	v.SetDefault("paths", []string{})
	v.SetDefault("grep", []string{})
	v.SetDefault("ignore_case", false)
	v.SetDefault("groups", []GroupConfig{})
	v.SetDefault("binary", DefaultBinary)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("keep_going", false)
	v.SetDefault("mailmap", false)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "")
	v.SetDefault("color", DefaultColor)
}
