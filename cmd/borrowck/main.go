package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"borrowck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "borrowck",
	Short: "Ownership and borrow validator for event scripts",
	Long:  `borrowck replays binding, move, borrow and scope events and reports the first ownership violation`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyColorMode(cmd)
	},
}

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.String()

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cleanCmd)

	registerGlobalFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerGlobalFlags adds the persistent flags every subcommand reads.
func registerGlobalFlags(root *cobra.Command) {
	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	// Трассировка
	root.PersistentFlags().String("trace", "", "trace output path (\"-\" for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")

	// Профилирование
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this path")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this path on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this path")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
