package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sinclairtarget/git-tagstats/internal/git"
)

func parseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:    "parse [tags...]",
		Short:  "Print the commits parsed for each range",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return parse(cmd, flags, args)
		},
	}
}

// Just prints out a simple representation of the commits parsed from `git log`
// for debugging.
func parse(cmd *cobra.Command, flags *globalFlags, args []string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"parse\": %w", err)
		}
	}()

	logger().Debug("called parse()", "args", args)

	ctx := cmd.Context()

	s, err := openSession(ctx, cmd, flags, args)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			err = s.close()
		}
	}()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, rng := range git.Ranges(s.tags) {
		commits, err := s.source.Commits(ctx, s.query(rng))
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "# %s\n", rng)
		for _, commit := range commits {
			fmt.Fprintf(w, "%s\n", commit)
			for _, diff := range commit.FileDiffs {
				fmt.Fprintf(w, "  %s\n", diff)
			}
			for _, statErr := range commit.BadStats {
				fmt.Fprintf(w, "  ! %s\n", statErr)
			}

			fmt.Fprintln(w)
		}
	}

	return nil
}
