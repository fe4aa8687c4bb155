package cli

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/dtogen/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	goModParser *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{
		goModParser: utils.NewGoModParser(nil),
	}
}

// ResolveModule finds the go.mod governing dir and reads it
func (r *ModuleResolver) ResolveModule(dir string) (*utils.ModuleInfo, error) {
	goModPath, err := r.goModParser.FindGoModFile(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine module: %w", err)
	}
	return r.goModParser.ParseModule(goModPath)
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(module *utils.ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	relPath, err := filepath.Rel(module.Dir, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return module.Path, nil
	}
	if importPath == ".." || len(importPath) > 2 && importPath[:3] == "../" {
		return "", fmt.Errorf("package directory %s is outside module %s", packageDir, module.Path)
	}

	return module.Path + "/" + importPath, nil
}
