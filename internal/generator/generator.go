// Package generator synthesizes DTO declarations for eligible containers and
// renders them into one generated file per package.
package generator

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/internal/templates"
	"github.com/toyz/dtogen/internal/utils"
)

// DefaultOutputFile is the name of the file written into each package
const DefaultOutputFile = "autogen_dto.go"

// Generator implements the CodeGenerator interface
type Generator struct {
	outputFile string
}

// Option configures a Generator
type Option func(*Generator)

// WithOutputFile sets the name of the generated file
func WithOutputFile(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.outputFile = name
		}
	}
}

// NewGenerator creates a new code generator instance
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{outputFile: DefaultOutputFile}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OutputFile returns the name of the generated file
func (g *Generator) OutputFile() string {
	return g.outputFile
}

// GeneratePackage renders the declaration sets of one package as a formatted
// Go file. A package without declaration sets yields nil.
func (g *Generator) GeneratePackage(pkg *models.Package, sets []*models.DeclarationSet) (*models.GeneratedFile, error) {
	if pkg == nil {
		return nil, fmt.Errorf("package cannot be nil")
	}
	if len(sets) == 0 {
		return nil, nil
	}

	filePath := filepath.Join(pkg.Dir, g.outputFile)

	source, err := templates.RenderFile(pkg.Name, pkg.Path, sets)
	if err != nil {
		return nil, errors.WrapGenerateError(pkg.Path, filePath, "render", err)
	}

	content, err := utils.FormatGoCodeString(source)
	if err != nil {
		return nil, errors.WrapGenerateError(pkg.Path, filePath, "format", err)
	}

	file := &models.GeneratedFile{
		PackageName: pkg.Name,
		PackagePath: pkg.Path,
		FilePath:    filePath,
		Content:     content,
	}
	for _, set := range sets {
		file.Types = append(file.Types, set.Container.DTOName)
	}
	return file, nil
}
