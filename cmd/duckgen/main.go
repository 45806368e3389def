// Package main provides the duckgen CLI.
//
// duckgen reads a duckgen.yaml naming Go interfaces and writes one adapter
// struct per interface. Adapters are duck proxy shapes: registering them
// with a duck.Cache lets duck.Create return the interface for any value
// whose members can be bound to it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "duckgen",
		Short:         "Generate duck proxy adapters for Go interfaces",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newInitCmd())

	return rootCmd
}
