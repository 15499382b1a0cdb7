package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func tableCmd(flags *globalFlags) *cobra.Command {
	var useCsv bool

	cmd := &cobra.Command{
		Use:   "table [tags...]",
		Short: "Print a table per group with the stats for each tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			return table(cmd, flags, args, useCsv)
		},
	}

	cmd.Flags().BoolVar(&useCsv, "csv", false, "Output as csv")
	return cmd
}

// The "table" subcommand summarizes the changes between each pair of tags,
// one table per group.
//
// If a range fails we still print what we have before returning the error.
func table(
	cmd *cobra.Command,
	flags *globalFlags,
	args []string,
	useCsv bool,
) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error running \"table\": %w", err)
		}
	}()

	logger().Debug("called table()", "args", args, "useCsv", useCsv)

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

	if useCsv {
		err = r.ShowTableCSV(os.Stdout)
	} else {
		err = r.ShowTable(os.Stdout)
	}
	if err != nil {
		return err
	}

	return genErr
}
