package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sinclairtarget/git-tagstats/internal/config"
)

func configCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if err != nil {
					err = fmt.Errorf("error running \"config\": %w", err)
				}
			}()

			cfg, err := config.Load(flags.configPath, cmd.Flags())
			if err != nil {
				return err
			}

			out, err := cfg.YAML()
			if err != nil {
				return err
			}

			_, err = os.Stdout.Write(out)
			return err
		},
	}
}
