package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
)

var Commit = "unknown"
var Version = "unknown"

var logger = sync.OnceValue(func() *slog.Logger {
	return slog.Default().With("package", "main")
})

// Flags shared by every subcommand.
type globalFlags struct {
	configPath string
	repoDir    string
	verbose    bool
	noColor    bool
	clearCache bool
}

// Main hands off to cobra. With no subcommand we run "table".
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	table := tableCmd(&flags)

	root := &cobra.Command{
		Use:   "git-tagstats [tags...]",
		Short: "git-tagstats reports commit stats between tags by author group",
		Long: `git-tagstats walks each consecutive pair of tags, counts the files,
lines and commits changed between them and attributes them to groups of
authors matched by email.

Tags are taken from the arguments, then the config file, then git tag.`,
		Version:       fmt.Sprintf("%s %s", Version, Commit),
		Args:          cobra.ArbitraryArgs,
		RunE:          table.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				configureLogging(slog.LevelDebug)
				logger().Debug("log level set to DEBUG")
			} else {
				configureLogging(slog.LevelInfo)
			}
		},
	}

	pflags := root.PersistentFlags()
	pflags.StringVar(&flags.configPath, "config", "", "Path to config file (default .tagstats.yaml in . or $HOME)")
	pflags.StringVarP(&flags.repoDir, "repo", "C", "", "Run as if started in this directory")
	pflags.BoolVarP(&flags.verbose, "verbose", "v", false, "Enables debug logging")
	pflags.BoolVar(&flags.noColor, "no-color", false, "Never use color")
	pflags.BoolVar(&flags.clearCache, "clear-cache", false, "Throw away cached commits before running")
	addReportFlags(root)

	// The root command runs table, so it takes table's flags too
	root.Flags().AddFlagSet(table.Flags())

	root.AddCommand(
		table,
		commitsCmd(&flags),
		dumpCmd(&flags),
		parseCmd(&flags),
		configCmd(&flags),
	)

	return root
}

// Flags that override keys from the config file. Names must match the ones
// internal/config binds.
func addReportFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("tag-pattern", "", "Pattern passed to git tag --list when no tags are given")
	f.String("sort", "", "Tag order: given or semver")
	f.StringSlice("path", nil, "Only count changes to these paths (repeatable)")
	f.StringSlice("grep", nil, "Only count commits whose message matches (repeatable)")
	f.Bool("ignore-case", false, "Match --grep patterns regardless of case")
	f.String("binary", "", "How to count binary files: zero or skip")
	f.Int("concurrency", 0, "Max git log processes at once")
	f.Bool("keep-going", false, "Keep going after a range fails")
	f.Bool("mailmap", false, "Map author identities through .mailmap")
	f.Bool("cache", false, "Cache commits between tags on disk")
	f.String("cache-path", "", "Location of the cache file")
	f.String("color", "", "When to use color: auto, always or never")
}

func configureLogging(level slog.Level) {
	handler := slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{
			Level: level,
		},
	)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
