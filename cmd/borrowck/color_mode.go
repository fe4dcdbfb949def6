package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func readColorFlag(cmd *cobra.Command) (string, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return "", fmt.Errorf("failed to get color flag: %w", err)
	}
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "", "auto":
		return "auto", nil
	case "on", "off":
		return value, nil
	}
	return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
}

func resolveColor(mode string, tty bool) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return tty
	}
}

// applyColorMode sets the global fatih/color switch used by version output
// and the progress summary.
func applyColorMode(cmd *cobra.Command) error {
	mode, err := readColorFlag(cmd)
	if err != nil {
		return err
	}
	color.NoColor = !resolveColor(mode, isTerminal(os.Stdout))
	return nil
}

func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := readColorFlag(cmd)
	if err != nil {
		return false, err
	}
	return resolveColor(mode, isTerminal(os.Stdout)), nil
}
