package parser

import (
	"context"
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/dtogen/internal/annotations"
	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/models"
)

// Loader loads Go packages and builds the symbol view of a pipeline run
type Loader struct {
	dir         string
	goVersion   string
	annotations annotations.AnnotationParser
}

// Option configures a Loader
type Option func(*Loader)

// WithDir sets the directory packages are resolved from
func WithDir(dir string) Option {
	return func(l *Loader) { l.dir = dir }
}

// WithGoVersion sets the language version used when no module information is available
func WithGoVersion(goVersion string) Option {
	return func(l *Loader) { l.goVersion = goVersion }
}

// WithAnnotationParser replaces the annotation parser
func WithAnnotationParser(p annotations.AnnotationParser) Option {
	return func(l *Loader) { l.annotations = p }
}

// NewLoader creates a new Loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		annotations: annotations.NewParticipleParser(annotations.DefaultRegistry()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// packageInput is a type-checked package ready to be scanned
type packageInput struct {
	name      string
	path      string
	dir       string
	goVersion string
	types     *types.Package
	info      *types.Info
	files     []*ast.File
}

// Load loads the packages matching patterns. Packages that fail to load are left out
// of the program and reported together in the returned error.
func (l *Loader) Load(ctx context.Context, patterns ...string) (*models.Program, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	fset := token.NewFileSet()
	pkgs, err := l.load(ctx, fset, patterns, nil)
	if err != nil {
		return nil, err
	}

	// A stale generated file can break type-checking after its source changed.
	// Reload with those files reduced to their package clause.
	if overlay := staleGeneratedOverlay(fset, pkgs); len(overlay) > 0 {
		fset = token.NewFileSet()
		if pkgs, err = l.load(ctx, fset, patterns, overlay); err != nil {
			return nil, err
		}
	}

	loadErrs := errors.NewMultipleErrors()
	var inputs []*packageInput
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			for _, e := range pkg.Errors {
				loadErrs.Add(errors.WrapLoadError(pkg.PkgPath, parsePosition(e.Pos), stderrors.New(e.Msg)))
			}
			continue
		}
		inputs = append(inputs, l.inputFromPackage(fset, pkg))
	}

	return l.buildProgram(fset, inputs), loadErrs.ErrOrNil()
}

// load runs go/packages with the loader configuration
func (l *Loader) load(ctx context.Context, fset *token.FileSet, patterns []string, overlay map[string][]byte) ([]*packages.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     l.dir,
		Fset:    fset,
		Overlay: overlay,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(errors.LoadErrorCode, "failed to load packages", err)
	}
	return pkgs, nil
}

// inputFromPackage converts a loaded package, dropping generated files
func (l *Loader) inputFromPackage(fset *token.FileSet, pkg *packages.Package) *packageInput {
	in := &packageInput{
		name:      pkg.Name,
		path:      pkg.PkgPath,
		goVersion: l.goVersion,
		types:     pkg.Types,
		info:      pkg.TypesInfo,
	}
	if pkg.Module != nil && pkg.Module.GoVersion != "" {
		in.goVersion = pkg.Module.GoVersion
	}
	if len(pkg.GoFiles) > 0 {
		in.dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, file := range pkg.Syntax {
		if !IsGeneratedFile(file) {
			in.files = append(in.files, file)
		}
	}
	sortFiles(fset, in.files)
	return in
}

// ParseSource type-checks a single in-memory file as its own package
func (l *Loader) ParseSource(filename, source string) (*models.Program, error) {
	return l.ParseFiles(map[string]string{filename: source})
}

// ParseFiles type-checks in-memory files that form one package. Imports are
// resolved from source.
func (l *Loader) ParseFiles(sources map[string]string) (*models.Program, error) {
	if len(sources) == 0 {
		return nil, errors.New(errors.LoadErrorCode, "no source files given")
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	fset := token.NewFileSet()
	files := make([]*ast.File, 0, len(names))
	for _, name := range names {
		file, err := goparser.ParseFile(fset, name, sources[name], goparser.ParseComments)
		if err != nil {
			return nil, errors.WrapLoadError(name, diagnostics.Location{File: name}, err)
		}
		files = append(files, file)
	}

	pkgName := files[0].Name.Name
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}

	pkg, err := conf.Check(pkgName, fset, files, info)
	if err != nil {
		var typeErr types.Error
		loc := diagnostics.Location{}
		if stderrors.As(err, &typeErr) {
			loc = diagnostics.LocationOf(typeErr.Fset.Position(typeErr.Pos))
		}
		return nil, errors.WrapLoadError(pkgName, loc, err)
	}

	in := &packageInput{
		name:      pkgName,
		path:      pkgName,
		dir:       filepath.Dir(names[0]),
		goVersion: l.goVersion,
		types:     pkg,
		info:      info,
	}
	for _, file := range files {
		if !IsGeneratedFile(file) {
			in.files = append(in.files, file)
		}
	}

	return l.buildProgram(fset, []*packageInput{in}), nil
}

// IsGeneratedFile reports whether a file was written by dtogen
func IsGeneratedFile(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() > file.Package {
			break
		}
		if strings.Contains(group.Text(), GeneratedMarker) {
			return true
		}
	}
	return false
}

// staleGeneratedOverlay returns an overlay for the generated files of packages that
// failed to type-check
func staleGeneratedOverlay(fset *token.FileSet, pkgs []*packages.Package) map[string][]byte {
	overlay := make(map[string][]byte)
	for _, pkg := range pkgs {
		if len(pkg.TypeErrors) == 0 {
			continue
		}
		for _, file := range pkg.Syntax {
			if !IsGeneratedFile(file) {
				continue
			}
			name := fset.File(file.Pos()).Name()
			overlay[name] = []byte(fmt.Sprintf("// %s. DO NOT EDIT.\n\npackage %s\n", GeneratedMarker, pkg.Name))
		}
	}
	return overlay
}

// sortFiles orders files by file name
func sortFiles(fset *token.FileSet, files []*ast.File) {
	sort.SliceStable(files, func(i, j int) bool {
		return fset.File(files[i].Pos()).Name() < fset.File(files[j].Pos()).Name()
	})
}

// parsePosition parses the "file:line:col" form used by packages.Error
func parsePosition(pos string) diagnostics.Location {
	if pos == "" || pos == "-" {
		return diagnostics.Location{}
	}

	parts := strings.Split(pos, ":")
	loc := diagnostics.Location{File: pos}
	var nums []int
	for len(parts) > 1 && len(nums) < 2 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			break
		}
		nums = append([]int{n}, nums...)
		parts = parts[:len(parts)-1]
	}
	if len(nums) == 0 {
		return loc
	}

	loc.File = strings.Join(parts, ":")
	loc.Line = nums[0]
	if len(nums) > 1 {
		loc.Column = nums[1]
	}
	return loc
}
