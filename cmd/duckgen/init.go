package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"duckproxy/internal/mapping"
)

func newInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter duckgen config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", output)
				}
			}

			if err := mapping.WriteFile(mapping.Default(), output); err != nil {
				return err
			}

			cmd.Printf("wrote %s\n", output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultConfigPath, "path of the config to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}
