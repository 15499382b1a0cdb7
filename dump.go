package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sinclairtarget/git-tagstats/internal/git"
)

func dumpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:    "dump [tags...]",
		Short:  "Print the raw git log output for each range",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dump(cmd, flags, args)
		},
	}
}

// Makes the separators in our log format visible.
var separators = strings.NewReplacer("\x1e", "<RS>", "\x1f", "<US>")

// Just prints out the output of git log as seen by git-tagstats.
func dump(cmd *cobra.Command, flags *globalFlags, args []string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"dump\": %w", err)
		}
	}()

	logger().Debug("called dump()", "args", args)

	start := time.Now()
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

	for _, rng := range git.Ranges(s.tags) {
		fmt.Fprintf(w, "# %s\n", rng)

		err = s.repo.DumpLog(ctx, s.query(rng), func(line string) {
			fmt.Fprintln(w, separators.Replace(line))
		})
		if err != nil {
			return err
		}
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	elapsed := time.Now().Sub(start)
	logger().Debug("finished dump", "duration_ms", elapsed.Milliseconds())

	return nil
}
