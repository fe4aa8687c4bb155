// Package pipeline drives a dtogen run: classify every container, extract its
// members, synthesize declarations for the eligible ones and render one file
// per package.
package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/dtogen/internal/classifier"
	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/extractor"
	"github.com/toyz/dtogen/internal/generator"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/internal/parser"
)

// Options configures a run
type Options struct {
	// Jobs bounds concurrent work. Zero or less uses GOMAXPROCS.
	Jobs int

	Features models.HostFeatures

	// Generator renders the declaration sets of each package. Nil skips rendering.
	Generator generator.CodeGenerator

	// OnContainerDone is called once for every completed container, from the
	// goroutine that processed it. DTO name clashes across the package are
	// resolved later, during the merge.
	OnContainerDone func(ContainerResult)
}

// ContainerResult is the complete outcome of one container
type ContainerResult struct {
	Package     string
	Container   *models.ContainerDescriptor
	Members     []*models.MemberDescriptor
	Set         *models.DeclarationSet
	Diagnostics []diagnostics.Diagnostic
}

// Result is the ordered output of a run
type Result struct {
	// Containers holds the completed containers in source order
	Containers []ContainerResult
	// Sets holds the declaration sets of eligible containers in source order
	Sets []*models.DeclarationSet
	// Diagnostics holds every diagnostic of the run. Per package, load
	// diagnostics come first, then each container in source order.
	Diagnostics []diagnostics.Diagnostic
	// Files holds one rendered file per package with at least one set
	Files []*models.GeneratedFile
	// Skipped lists packages whose go version cannot compile generated code
	Skipped []string
	// Canceled reports that the context ended before every container completed
	Canceled bool
}

// HasErrors reports whether any diagnostic is an error
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// unit is one container scheduled for processing
type unit struct {
	pkg       int
	container *models.ContainerSymbol
}

// Run processes a program. Containers are handled concurrently and merged in
// source order, so the same program always gives the same result. When ctx
// ends, containers that had not completed contribute nothing; the partial
// result is returned together with ctx.Err(). Rendering failures abort the run.
func Run(ctx context.Context, prog *models.Program, opts Options) (*Result, error) {
	result := &Result{}
	if prog == nil {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var units []unit
	eligible := make([]bool, len(prog.Packages))
	for i, pkg := range prog.Packages {
		if !parser.SupportsGeneratedCode(pkg.GoVersion) {
			result.Skipped = append(result.Skipped, pkg.Path)
			continue
		}
		eligible[i] = true
		for _, c := range pkg.Containers {
			units = append(units, unit{pkg: i, container: c})
		}
	}

	// Each goroutine writes only its own slot
	slots := make([]*ContainerResult, len(units))

	var g errgroup.Group
	g.SetLimit(max(1, min(jobs, len(units))))
	for i, u := range units {
		g.Go(func() error {
			res, ok := processContainer(ctx, u.container, opts.Features, jobs)
			if !ok {
				return nil
			}
			res.Package = prog.Packages[u.pkg].Path
			slots[i] = res
			if opts.OnContainerDone != nil {
				opts.OnContainerDone(*res)
			}
			return nil
		})
	}
	_ = g.Wait()

	byPackage := make([][]*ContainerResult, len(prog.Packages))
	for i, u := range units {
		if slots[i] == nil {
			result.Canceled = true
			continue
		}
		byPackage[u.pkg] = append(byPackage[u.pkg], slots[i])
	}

	for i, pkg := range prog.Packages {
		if !eligible[i] {
			continue
		}
		result.Diagnostics = append(result.Diagnostics, pkg.Diagnostics...)

		var sets []*models.DeclarationSet
		claimed := make(map[string]bool)
		for _, res := range byPackage[i] {
			claimDTOName(pkg, res, claimed)
			result.Containers = append(result.Containers, *res)
			result.Diagnostics = append(result.Diagnostics, res.Diagnostics...)
			if res.Set != nil {
				sets = append(sets, res.Set)
			}
		}
		result.Sets = append(result.Sets, sets...)

		if opts.Generator == nil || len(sets) == 0 {
			continue
		}
		file, err := opts.Generator.GeneratePackage(pkg, sets)
		if err != nil {
			return result, err
		}
		if file != nil {
			result.Files = append(result.Files, file)
		}
	}

	if result.Canceled {
		return result, ctx.Err()
	}
	return result, nil
}

// claimDTOName drops the declaration set of a container whose DTO type name is
// already declared in the package or was claimed by an earlier container
func claimDTOName(pkg *models.Package, res *ContainerResult, claimed map[string]bool) {
	if res.Set == nil {
		return
	}
	name := res.Set.Container.DTOName
	if !pkg.Declares(name) && !claimed[name] {
		claimed[name] = true
		return
	}
	res.Set = nil
	res.Diagnostics = append(res.Diagnostics, diagnostics.New(diagnostics.NameCollision,
		res.Container.Location, res.Container.Name, name, "package "+pkg.Name))
}

// processContainer classifies a container, extracts its members concurrently and
// synthesizes its declarations. It reports false when ctx ended before the
// container completed.
func processContainer(ctx context.Context, c *models.ContainerSymbol, features models.HostFeatures, jobs int) (*ContainerResult, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	desc, diag := classifier.Classify(c)
	res := &ContainerResult{Container: desc}
	if diag != nil {
		res.Diagnostics = append(res.Diagnostics, *diag)
	}

	type extracted struct {
		member *models.MemberDescriptor
		diags  []diagnostics.Diagnostic
	}
	slots := make([]extracted, len(c.Members))

	var g errgroup.Group
	g.SetLimit(max(1, min(jobs, len(c.Members))))
	for i, m := range c.Members {
		g.Go(func() error {
			member, diags, err := extractor.Extract(ctx, m, features)
			if err != nil {
				return err
			}
			slots[i] = extracted{member: member, diags: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false
	}

	for _, s := range slots {
		res.Diagnostics = append(res.Diagnostics, s.diags...)
		if s.member != nil {
			res.Members = append(res.Members, s.member)
		}
	}

	if desc.Eligible() {
		set, diags := generator.Synthesize(desc, res.Members)
		res.Set = set
		res.Diagnostics = append(res.Diagnostics, diags...)
	}
	return res, true
}
