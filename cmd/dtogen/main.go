package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/toyz/dtogen/internal/cli"
	"github.com/toyz/dtogen/internal/utils"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// errDiagnostics fails a run whose diagnostics were already printed
var errDiagnostics = stderrors.New("source diagnostics reported")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dtogen",
		Short: "Generate DTO types from dto:: annotations",
		Long: `dtogen scans Go packages for structs annotated with //dto::source and
//dto::member and writes a DTO type with change notification, ToDTO and Apply
into one autogen_dto.go file per package.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("dir", "C", ".", "directory to run in")
	flags.Bool("verbose", false, "enable verbose output and detailed error reporting")
	flags.Bool("quiet", false, "only show errors and final results")
	flags.Int("jobs", 0, "max parallel workers (0=auto)")
	flags.String("output", "", "name of the generated file in each package")
	flags.Bool("notnil", true, "emit //dto:notnil directives on setters of nil-able members")
	flags.Bool("fail-on-warnings", false, "treat warnings as errors")
	flags.Bool("no-cache", false, "ignore and do not update the generation manifest")

	root.AddCommand(newGenerateCmd(), newCheckCmd(), newCleanCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate DTO files for the matching packages",
		Long: `Generate DTO files for the packages matching the patterns (default ./...).
Patterns follow the go tool: ./... recurses, ./models names one package.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args, cli.ModeGenerate)
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [patterns...]",
		Short: "Report diagnostics without writing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args, cli.ModeCheck)
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [patterns...]",
		Short: "Delete generated DTO files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ds, err := loadConfig(cmd, args)
			if err != nil {
				return fail(cmd, cfg.Verbose, err)
			}
			generator := cli.NewGenerator(cfg, ds)

			ds.Header("cleaning generated files")
			removed, err := generator.Clean()
			for _, file := range removed {
				ds.PhaseItem("Removed " + file)
			}
			if err != nil {
				return fail(cmd, cfg.Verbose, err)
			}
			ds.Success("Removed %d generated files", len(removed))
			return nil
		},
	}
}

func runPipeline(cmd *cobra.Command, args []string, mode cli.Mode) error {
	cfg, ds, err := loadConfig(cmd, args)
	if err != nil {
		return fail(cmd, cfg.Verbose, err)
	}

	if mode == cli.ModeCheck {
		ds.Header("checking annotations")
	} else {
		ds.Header("generating DTOs")
	}
	ds.SourcePath(cfg.Dir)

	summary, err := cli.NewGenerator(cfg, ds).Run(cmd.Context(), mode)
	if err != nil {
		return fail(cmd, cfg.Verbose, err)
	}

	ds.Summary("Summary", map[string]interface{}{
		"Packages processed": summary.PackagesProcessed,
		"Containers found":   summary.ContainersFound,
		"DTOs generated":     summary.DTOsGenerated,
		"Files written":      len(summary.GeneratedFiles),
		"Files unchanged":    len(summary.UnchangedFiles),
		"Files removed":      len(summary.RemovedFiles),
		"Errors":             summary.Errors,
		"Warnings":           summary.Warnings,
	})
	ds.Verbose("run %s took %s", summary.RunID, summary.Duration)

	if summary.Failed(cfg.FailOnWarnings) {
		ds.Error("%d errors, %d warnings", summary.Errors, summary.Warnings)
		return errDiagnostics
	}
	if mode == cli.ModeGenerate {
		ds.GenerationComplete()
	}
	return nil
}

// fail reports a run-level error and returns it
func fail(cmd *cobra.Command, verbose bool, err error) error {
	reporter := cli.NewDiagnosticReporter(verbose)
	if cmd.ErrOrStderr() != os.Stderr {
		reporter.SetOutput(cmd.ErrOrStderr())
	}
	reporter.ReportError(err)
	return err
}

// loadConfig builds the run configuration: dtogen.toml, then .env and the
// environment, then flags that were set explicitly, then positional patterns
func loadConfig(cmd *cobra.Command, args []string) (cli.Config, *utils.DiagnosticSystem, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")

	cfg, err := cli.LoadConfig(dir)
	if err != nil {
		return cfg, nil, err
	}

	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("output") {
		cfg.OutputFile, _ = flags.GetString("output")
	}
	if flags.Changed("notnil") {
		enabled, _ := flags.GetBool("notnil")
		cfg.NotNilContracts = &enabled
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("fail-on-warnings") {
		cfg.FailOnWarnings, _ = flags.GetBool("fail-on-warnings")
	}
	if flags.Changed("no-cache") {
		cfg.NoCache, _ = flags.GetBool("no-cache")
	}
	if len(args) > 0 {
		cfg.Patterns = args
	}

	quiet, _ := flags.GetBool("quiet")
	var ds *utils.DiagnosticSystem
	switch {
	case quiet:
		ds = utils.NewQuietDiagnostics()
	case cfg.Verbose:
		ds = utils.NewVerboseDiagnostics()
	default:
		ds = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if cmd.OutOrStdout() != os.Stdout || cmd.ErrOrStderr() != os.Stderr {
		ds.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	if err := cfg.Validate(); err != nil {
		return cfg, ds, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, ds, nil
}
