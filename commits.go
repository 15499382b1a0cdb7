package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func commitsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commits [tags...]",
		Short: "List the commits, files and authors behind each row of the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return commits(cmd, flags, args)
		},
	}
}

func commits(cmd *cobra.Command, flags *globalFlags, args []string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"commits\": %w", err)
		}
	}()

	logger().Debug("called commits()", "args", args)

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

	r, err := s.report(!flags.verbose)
	if err != nil {
		return err
	}

	genErr := r.Generate(ctx)

	w := bufio.NewWriter(os.Stdout)
	err = r.ShowCommits(ctx, w)
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return err
	}

	return genErr
}
