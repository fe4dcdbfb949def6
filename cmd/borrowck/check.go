package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"borrowck/internal/borrow"
	"borrowck/internal/diag"
	"borrowck/internal/driver"
	"borrowck/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.own|dir>",
	Short: "Validate event scripts against ownership and borrow rules",
	Long: `Validate one event script or every *.own script under a directory.
Settings from the nearest borrowck.toml apply unless overridden by flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	registerCheckFlags(checkCmd)
}

func registerCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Bool("strict", false, "enable every optional rule")
	cmd.Flags().Bool("freeze-borrowed", false, "reject direct access to a borrowed binding")
	cmd.Flags().Bool("reject-dangling", false, "reject scope exits that leave a borrow dangling")
	cmd.Flags().Int("jobs", 0, "max parallel checks for directories (0=auto)")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("with-notes", true, "include related-event notes")
	cmd.Flags().Bool("cache", false, "reuse verdicts from the on-disk cache")
	cmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	cmd.Flags().Bool("emit-log", false, "print the checker log and final binding states")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths")
}

// errChecksFailed makes the process exit with status 1 after the deferred
// tracer cleanup has run.
var errChecksFailed = errors.New("some scripts failed the check")

// checkSettings is the merged view of flags and manifest.
type checkSettings struct {
	format    string
	rules     borrow.Options
	maxDiags  int
	warnings  diag.WarningPolicy
	jobs      int
	cache     bool
	withNotes bool
	emitLog   bool
	fullPath  bool
	timings   bool
	quiet     bool
	color     bool
	ui        uiMode
}

// runCheck executes the "check" command. It returns an error for flag and
// manifest problems; a script that breaks a rule is reported and turns into
// exit status 1.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	target := args[0]
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	startDir := target
	if !st.IsDir() {
		startDir = filepath.Dir(target)
	}
	manifest, _, err := loadProjectManifest(startDir)
	if err != nil {
		return err
	}

	settings, err := readCheckSettings(cmd, manifest)
	if err != nil {
		return err
	}
	color.NoColor = !settings.color

	opts := driver.Options{
		Rules:          settings.rules,
		MaxDiagnostics: settings.maxDiags,
		Warnings:       settings.warnings,
		Jobs:           settings.jobs,
		KeepLog:        settings.emitLog,
	}
	if manifest != nil {
		opts.BaseDir = manifest.Root
	}
	if settings.cache {
		cache, cacheErr := driver.OpenDiskCache("borrowck")
		if cacheErr != nil {
			return fmt.Errorf("failed to open cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	ctx := cmd.Context()
	var results []*driver.CheckResult
	if st.IsDir() {
		files, listErr := driver.ListScripts(target)
		if listErr != nil {
			return fmt.Errorf("failed to list scripts: %w", listErr)
		}
		if len(files) == 0 {
			if !settings.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "no %s files under %s\n", driver.ScriptExt, target)
			}
			return nil
		}
		if shouldUseTUI(settings.ui) && settings.format == "pretty" {
			results, err = runCheckWithUI(ctx, "checking "+target, files, opts)
		} else {
			results, err = driver.CheckFiles(ctx, files, opts)
		}
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
	} else {
		res, checkErr := driver.CheckFile(ctx, target, opts)
		if checkErr != nil {
			return fmt.Errorf("check failed: %w", checkErr)
		}
		results = []*driver.CheckResult{res}
	}

	out := cmd.OutOrStdout()
	if err := writeResults(out, results, settings); err != nil {
		return err
	}

	summary := driver.Summarize(results)
	if settings.format == "pretty" && !settings.quiet {
		printSummary(out, summary)
	}
	if settings.timings {
		total := observ.NewTimer()
		for _, r := range results {
			if r != nil && r.Timer != nil {
				total.Merge(r.Timer)
			}
		}
		fmt.Fprint(cmd.ErrOrStderr(), total.Summary())
	}

	if summary.Failed > 0 {
		// вердикт уже напечатан, cobra не должна дублировать его usage-текстом
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errChecksFailed
	}
	return nil
}

func warningPolicy(ignore, promote bool) (diag.WarningPolicy, error) {
	switch {
	case ignore && promote:
		return diag.WarningsKeep, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	case ignore:
		return diag.WarningsIgnore, nil
	case promote:
		return diag.WarningsAsErrors, nil
	}
	return diag.WarningsKeep, nil
}

// readCheckSettings merges flags over manifest values over defaults.
func readCheckSettings(cmd *cobra.Command, manifest *projectManifest) (checkSettings, error) {
	var s checkSettings
	var err error
	flags := cmd.Flags()

	if s.format, err = flags.GetString("format"); err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	if !flags.Changed("format") && manifest.defines("output", "format") {
		s.format = manifest.Config.Output.Format
	}
	if !validFormat(s.format) {
		return s, fmt.Errorf("unknown format: %s", s.format)
	}

	strict, err := flags.GetBool("strict")
	if err != nil {
		return s, fmt.Errorf("failed to get strict flag: %w", err)
	}
	if !flags.Changed("strict") && manifest.defines("check", "strict") {
		strict = manifest.Config.Check.Strict
	}
	if strict {
		s.rules = borrow.StrictOptions()
	}

	freeze, err := flags.GetBool("freeze-borrowed")
	if err != nil {
		return s, fmt.Errorf("failed to get freeze-borrowed flag: %w", err)
	}
	if !flags.Changed("freeze-borrowed") && manifest.defines("check", "freeze_borrowed") {
		freeze = manifest.Config.Check.FreezeBorrowed
	}
	s.rules.FreezeBorrowed = s.rules.FreezeBorrowed || freeze

	dangling, err := flags.GetBool("reject-dangling")
	if err != nil {
		return s, fmt.Errorf("failed to get reject-dangling flag: %w", err)
	}
	if !flags.Changed("reject-dangling") && manifest.defines("check", "reject_dangling") {
		dangling = manifest.Config.Check.RejectDangling
	}
	s.rules.RejectDangling = s.rules.RejectDangling || dangling

	if s.maxDiags, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && manifest.defines("check", "max_diagnostics") {
		s.maxDiags = manifest.Config.Check.MaxDiagnostics
	}

	noWarnings, err := flags.GetBool("no-warnings")
	if err != nil {
		return s, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if !flags.Changed("no-warnings") && manifest.defines("check", "no_warnings") {
		noWarnings = manifest.Config.Check.NoWarnings
	}
	warningsAsErrors, err := flags.GetBool("warnings-as-errors")
	if err != nil {
		return s, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if !flags.Changed("warnings-as-errors") && manifest.defines("check", "warnings_as_errors") {
		warningsAsErrors = manifest.Config.Check.WarningsAsErrors
	}
	if s.warnings, err = warningPolicy(noWarnings, warningsAsErrors); err != nil {
		return s, err
	}

	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && manifest.defines("check", "jobs") {
		s.jobs = manifest.Config.Check.Jobs
	}

	if s.cache, err = flags.GetBool("cache"); err != nil {
		return s, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !flags.Changed("cache") && manifest.defines("check", "cache") {
		s.cache = manifest.Config.Check.Cache
	}

	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.emitLog, err = flags.GetBool("emit-log"); err != nil {
		return s, fmt.Errorf("failed to get emit-log flag: %w", err)
	}
	if s.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return s, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}

	colorMode, err := readColorFlag(cmd)
	if err != nil {
		return s, err
	}
	if !flags.Changed("color") && manifest.defines("output", "color") {
		colorMode = manifest.Config.Output.Color
	}
	s.color = resolveColor(colorMode, isTerminal(os.Stdout))
	return s, nil
}
