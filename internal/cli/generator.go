package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/generator"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/internal/parser"
	"github.com/toyz/dtogen/internal/pipeline"
	"github.com/toyz/dtogen/internal/utils"
)

// Mode selects what a run does with its output
type Mode int

const (
	// ModeGenerate writes generated files
	ModeGenerate Mode = iota
	// ModeCheck only reports diagnostics
	ModeCheck
)

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	RunID             string
	Module            string
	PackagesProcessed int
	PackagesSkipped   []string
	ContainersFound   int
	DTOsGenerated     int
	Errors            int
	Warnings          int
	GeneratedFiles    []string
	UnchangedFiles    []string
	RemovedFiles      []string
	Canceled          bool
	Duration          time.Duration
}

// Failed reports whether the diagnostics should fail the run
func (s GenerationSummary) Failed(failOnWarnings bool) bool {
	return s.Errors > 0 || (failOnWarnings && s.Warnings > 0)
}

// Generator coordinates the CLI generation process
type Generator struct {
	config         Config
	moduleResolver *ModuleResolver
	cleaner        *Cleaner
	codeGenerator  generator.CodeGenerator
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
}

// NewGenerator creates a new CLI generator
func NewGenerator(config Config, ds *utils.DiagnosticSystem) *Generator {
	if ds == nil {
		ds = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	reporter := NewDiagnosticReporter(config.Verbose || ds.Enabled(utils.DiagnosticDebug))
	reporter.out = ds.ErrorOutput()
	reporter.useColors = ds.UseColors()
	return &Generator{
		config:         config,
		moduleResolver: NewModuleResolver(),
		cleaner:        NewCleaner(config.OutputFile),
		codeGenerator:  generator.NewGenerator(generator.WithOutputFile(config.OutputFile)),
		reporter:       reporter,
		diagnostics:    ds,
	}
}

// Run loads the configured packages, runs the pipeline and, in ModeGenerate,
// writes one file per package. Source diagnostics never fail Run; they are
// counted in the summary. The returned error is reserved for run-level failures.
func (g *Generator) Run(ctx context.Context, mode Mode) (GenerationSummary, error) {
	start := time.Now()
	summary := GenerationSummary{RunID: uuid.NewString()}
	ds := g.diagnostics

	if err := g.config.Validate(); err != nil {
		return summary, err
	}
	ds.Verbose("Run %s started at %s", summary.RunID, start.Format("15:04:05"))

	ds.PhaseHeader("Resolving module")
	module, err := g.moduleResolver.ResolveModule(g.config.Dir)
	if err != nil {
		return summary, errors.WrapConfigurationError("go.mod", "resolve", err).
			WithSuggestion("run dtogen inside a Go module").
			WithContext("directory", g.config.Dir)
	}
	summary.Module = module.Path
	ds.PhaseItem("Module " + module.Path + " (go " + module.GoVersion + ")")

	if _, err := NewDirectoryScanner().ResolveRoots(g.config.Dir, g.config.Patterns); err != nil {
		return summary, err
	}

	ds.PhaseHeader("Loading packages")
	loader := parser.NewLoader(parser.WithDir(g.config.Dir), parser.WithGoVersion(module.GoVersion))
	program, err := loader.Load(ctx, g.config.Patterns...)
	if err != nil {
		return summary, err
	}
	summary.PackagesProcessed = len(program.Packages)
	for _, pkg := range program.Packages {
		summary.ContainersFound += len(pkg.Containers)
		ds.Debug("package %s: %d containers", pkg.Path, len(pkg.Containers))
	}
	ds.PhaseItem("Loaded " + plural(len(program.Packages), "package"))

	ds.PhaseHeader("Synthesizing")
	opts := pipeline.Options{
		Jobs:     g.config.Jobs,
		Features: g.config.Features(),
		OnContainerDone: func(res pipeline.ContainerResult) {
			ds.Debug("%s: %s", res.Container.QualifiedName, res.Container.Verdict)
		},
	}
	if mode == ModeGenerate {
		opts.Generator = g.codeGenerator
	}
	result, err := pipeline.Run(ctx, program, opts)
	if result != nil {
		summary.Canceled = result.Canceled
		summary.PackagesSkipped = result.Skipped
		summary.DTOsGenerated = len(result.Sets)
		g.countDiagnostics(&summary, result.Diagnostics)
		g.reporter.ReportDiagnostics(result.Diagnostics)
		g.reporter.Dump("declaration sets", result.Sets)
	}
	for _, skipped := range summary.PackagesSkipped {
		g.reporter.ReportWarning("skipped " + skipped + ": go " + parser.MinimumGoVersion + " or newer is required")
	}
	if err != nil {
		return summary, err
	}

	if mode == ModeGenerate {
		if err := g.writeFiles(result, program.Packages, module, &summary); err != nil {
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// writeFiles writes rendered files, skipping those the manifest shows unchanged,
// and removes stale output from packages that no longer produce any
func (g *Generator) writeFiles(result *pipeline.Result, packages []*models.Package, module *utils.ModuleInfo, summary *GenerationSummary) error {
	var manifest *Manifest
	if !g.config.NoCache {
		manifest = OpenManifest(filepath.Join(module.Dir, ManifestFileName))
	}

	written := make(map[string]bool, len(result.Files))
	for _, file := range result.Files {
		written[file.FilePath] = true
		if manifest != nil && manifest.Unchanged(file.FilePath, file.Content) {
			summary.UnchangedFiles = append(summary.UnchangedFiles, file.FilePath)
			g.diagnostics.Verbose("unchanged %s", file.FilePath)
			continue
		}

		g.diagnostics.PhaseProgress("Writing " + file.FilePath)
		if err := utils.FormatAndWriteGoFile(file.FilePath, file.Content); err != nil {
			return errors.WrapGenerateError(file.PackagePath, file.FilePath, "write", err)
		}
		if manifest != nil {
			manifest.Record(file.FilePath, file.Content)
		}
		summary.GeneratedFiles = append(summary.GeneratedFiles, file.FilePath)
	}

	skipped := make(map[string]bool, len(result.Skipped))
	for _, path := range result.Skipped {
		skipped[path] = true
	}
	for _, pkg := range packages {
		if pkg.Dir == "" || skipped[pkg.Path] {
			continue
		}
		path := filepath.Join(pkg.Dir, g.codeGenerator.OutputFile())
		if written[path] {
			continue
		}
		removed, err := g.cleaner.RemoveIfGenerated(path)
		if err != nil {
			return err
		}
		if removed {
			summary.RemovedFiles = append(summary.RemovedFiles, path)
			g.diagnostics.Verbose("removed stale %s", path)
		}
		if manifest != nil {
			manifest.Forget(path)
		}
	}

	if manifest != nil {
		return manifest.Save(summary.RunID)
	}
	return nil
}

func (g *Generator) countDiagnostics(summary *GenerationSummary, diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case diagnostics.SeverityError:
			summary.Errors++
		case diagnostics.SeverityWarning:
			summary.Warnings++
		}
	}
}

// Clean removes generated files below the configured patterns, and the manifest
func (g *Generator) Clean() ([]string, error) {
	removed, err := g.cleaner.CleanGeneratedFiles(g.config.Dir, g.config.Patterns)
	if err != nil {
		return removed, err
	}
	if module, err := g.moduleResolver.ResolveModule(g.config.Dir); err == nil {
		if err := OpenManifest(filepath.Join(module.Dir, ManifestFileName)).Remove(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
