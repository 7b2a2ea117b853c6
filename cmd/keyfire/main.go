package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keyfire/keyfire/pkg/config"
	"github.com/keyfire/keyfire/pkg/console"
	"github.com/keyfire/keyfire/pkg/engine"
	"github.com/keyfire/keyfire/pkg/input"
	"github.com/keyfire/keyfire/pkg/schema"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "keyfire",
	Short: "Declarative keyboard and mouse macro engine",
	Long:  "keyfire — run declarative keyboard/mouse macros with pause, resume, stop, and safety limits.",
}

func init() {
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "record input actions instead of injecting them")
	runCmd.Flags().StringVar(&runConfig, "config", "", "path to a keyfire config file")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "write a JSONL step trace to this file")
	runCmd.Flags().StringVar(&runReport, "report", "", "write a YAML run report to this file")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "open the control console while the macro runs")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress per-step progress logging")

	rootCmd.AddCommand(validateCmd, runCmd, showCmd, schemaCmd, versionCmd)
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [macro.yaml]",
	Short: "Validate a macro YAML file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, errs := schema.ValidateFile(args[0])
	if len(errs) > 0 {
		var errors []*schema.ValidationError
		var warnings []*schema.ValidationError
		for _, e := range errs {
			if e.Severity == "warning" {
				warnings = append(warnings, e)
			} else {
				errors = append(errors, e)
			}
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", w.Phase, w.Message)
			if w.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", w.Path)
			}
		}
		if len(errors) > 0 {
			fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(errors))
			for i, e := range errors {
				fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
				if e.Path != "" {
					fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
				}
			}
			return fmt.Errorf("validation failed with %d error(s)", len(errors))
		}
	}
	fmt.Printf("✓ %s is valid (%d steps)\n", doc.Macro.Name, len(doc.Macro.Steps))
	return nil
}

// --- run ---

var (
	runDry         bool
	runConfig      string
	runTrace       string
	runReport      string
	runInteractive bool
	runQuiet       bool
)

var runCmd = &cobra.Command{
	Use:   "run [macro.yaml]",
	Short: "Execute a macro",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	doc, errs := schema.ValidateFile(args[0])
	if schema.HasErrors(errs) {
		fmt.Fprintf(os.Stderr, "Validation failed:\n")
		for _, e := range errs {
			if e.Severity != "warning" {
				fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.Phase, e.Message)
			}
		}
		return fmt.Errorf("macro validation failed")
	}
	m := &doc.Macro

	cfg, err := config.Load(runConfig)
	if err != nil {
		return err
	}
	opts := cfg.Options()

	if runTrace != "" {
		tw, err := engine.NewTraceWriter(runTrace)
		if err != nil {
			return err
		}
		defer tw.Close()
		opts.Trace = tw
	}

	level := zerolog.DebugLevel
	if runQuiet {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	var sink input.Sink
	if runDry {
		sink = &input.Recorder{Out: os.Stdout}
	} else {
		sink = input.NewSystem()
	}

	eng := engine.New(sink, engine.LogCallbacks(logger), opts)

	logger.Info().Str("macro", m.Name).Int("steps", len(m.Steps)).Int("repeat", m.Repeat).Bool("dry_run", runDry).Msg("starting")
	if err := eng.Submit(m); err != nil {
		return rejectionError(err)
	}

	if runInteractive {
		if err := console.New(m, eng).Run(); err != nil {
			return err
		}
	}
	eng.Wait()

	rep := eng.Report()
	if runReport != "" && rep != nil {
		if err := rep.WriteFile(runReport); err != nil {
			return err
		}
	}

	switch eng.State() {
	case engine.StateCompleted:
		fmt.Printf("✓ %s completed (%d passes, %d steps)\n", m.Name, rep.PassesCompleted, rep.StepsExecuted)
		return nil
	case engine.StateStopped:
		fmt.Printf("■ %s stopped after %d steps\n", m.Name, rep.StepsExecuted)
		return nil
	default:
		return fmt.Errorf("macro failed: %s", eng.Reason())
	}
}

// rejectionError turns a submission rejection into a user-facing error.
func rejectionError(err error) error {
	var vr *engine.ValidationRejection
	if errors.As(err, &vr) {
		var msgs []string
		for _, e := range vr.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("macro rejected: %s", strings.Join(msgs, "; "))
	}
	var rl *engine.RepeatLimitError
	if errors.As(err, &rl) {
		return fmt.Errorf("macro rejected: repeat %d exceeds the limit of %d", rl.Requested, rl.Allowed)
	}
	return fmt.Errorf("macro rejected: %w", err)
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the macro JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := schema.GenerateJSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keyfire %s (%s)\n", version, commit)
	},
}
