package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"borrowck/internal/borrow"
	"borrowck/internal/diagfmt"
	"borrowck/internal/driver"
	"borrowck/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios [name...]",
	Short: "Run the built-in ownership scenarios",
	Long:  `Run the built-in scenario catalog and compare each verdict with the expected one.`,
	RunE:  runScenarios,
}

func init() {
	scenariosCmd.Flags().Bool("list", false, "list scenarios without running them")
	scenariosCmd.Flags().Bool("emit", false, "print the event script of each scenario")
	scenariosCmd.Flags().Bool("with-diagnostics", false, "print diagnostics of failing scenarios")
}

var (
	scenarioPass = color.New(color.FgGreen, color.Bold)
	scenarioFail = color.New(color.FgRed, color.Bold)
	scenarioDim  = color.New(color.Faint)
)

func runScenarios(cmd *cobra.Command, args []string) error {
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

	list, err := selectScenarios(args)
	if err != nil {
		return err
	}

	listOnly, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	emit, err := cmd.Flags().GetBool("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	withDiags, err := cmd.Flags().GetBool("with-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get with-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	out := cmd.OutOrStdout()
	if listOnly || emit {
		for _, s := range list {
			printScenarioHeader(out, s)
			if emit {
				fmt.Fprint(out, s.Script)
				fmt.Fprintln(out)
			}
		}
		return nil
	}

	outcomes, err := scenario.RunAll(cmd.Context(), list, driver.Options{})
	if err != nil {
		return fmt.Errorf("scenarios interrupted: %w", err)
	}

	useColorOut, err := useColor(cmd)
	if err != nil {
		return err
	}
	failed := 0
	for _, o := range outcomes {
		if o.Pass() {
			if !quiet {
				fmt.Fprintf(out, "%s %s %s\n", scenarioPass.Sprint("PASS"), o.Scenario.Name, scenarioDim.Sprint(expectation(o.Scenario.Want)))
			}
			continue
		}
		failed++
		fmt.Fprintf(out, "%s %s: want %s, got %s\n", scenarioFail.Sprint("FAIL"), o.Scenario.Name, expectation(o.Scenario.Want), expectation(o.Got))
		if withDiags && o.Result != nil {
			diagfmt.Pretty(out, o.Result.Bag, o.Result.FileSet, diagfmt.PrettyOpts{Color: useColorOut, Context: 2, ShowNotes: true})
		}
	}
	fmt.Fprintf(out, "%d/%d scenarios passed\n", len(outcomes)-failed, len(outcomes))
	if failed > 0 {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errChecksFailed
	}
	return nil
}

func selectScenarios(names []string) ([]scenario.Scenario, error) {
	if len(names) == 0 {
		return scenario.All(), nil
	}
	out := make([]scenario.Scenario, 0, len(names))
	for _, name := range names {
		s, ok := scenario.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (see --list)", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func printScenarioHeader(out io.Writer, s scenario.Scenario) {
	rules := "base"
	if s.Strict {
		rules = "strict"
	}
	fmt.Fprintf(out, "%-28s %-7s %-22s %s\n", s.Name, rules, expectation(s.Want), s.Title)
}

func expectation(kind borrow.ViolationKind) string {
	if kind == borrow.ViolationNone {
		return "accepted"
	}
	return kind.String()
}
