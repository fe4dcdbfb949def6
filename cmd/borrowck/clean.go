package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"borrowck/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached check verdicts",
	Long:  "Drop every verdict stored by check --cache.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cache, err := driver.OpenDiskCache("borrowck")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", cache.Dir(), err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "removed cached verdicts in %s\n", cache.Dir())
	}
	return nil
}
