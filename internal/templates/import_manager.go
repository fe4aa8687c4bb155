package templates

import (
	"fmt"
	"go/types"
	"path"
	"sort"
	"strings"
)

// Import is one entry of a generated import block
type Import struct {
	Path  string
	Alias string
}

// ImportManager records the packages referenced by generated type expressions
// and hands out a unique name for each of them
type ImportManager struct {
	self   string
	byPath map[string]string // path -> name used in code
	byName map[string]string // name used in code -> path
}

// NewImportManager creates an import manager for code generated into the package at selfPath
func NewImportManager(selfPath string) *ImportManager {
	return &ImportManager{
		self:   selfPath,
		byPath: make(map[string]string),
		byName: make(map[string]string),
	}
}

// Qualifier returns a types.Qualifier that registers every package it is asked about.
// Types of the generated package are left unqualified.
func (im *ImportManager) Qualifier() types.Qualifier {
	return func(pkg *types.Package) string {
		if pkg == nil || pkg.Path() == im.self {
			return ""
		}
		return im.AddImport(pkg.Path(), pkg.Name())
	}
}

// AddImport registers a package and returns the name code should use for it.
// A name already taken by another path gets a numeric suffix.
func (im *ImportManager) AddImport(importPath, name string) string {
	if importPath == "" {
		return ""
	}
	if existing, ok := im.byPath[importPath]; ok {
		return existing
	}
	if name == "" {
		name = path.Base(importPath)
	}

	alias := name
	for i := 2; im.byName[alias] != ""; i++ {
		alias = fmt.Sprintf("%s%d", name, i)
	}
	im.byPath[importPath] = alias
	im.byName[alias] = importPath
	return alias
}

// Imports returns the registered imports sorted by path. Alias is set only when
// the name differs from the last path element.
func (im *ImportManager) Imports() []Import {
	imports := make([]Import, 0, len(im.byPath))
	for p, name := range im.byPath {
		imp := Import{Path: p}
		if name != path.Base(p) {
			imp.Alias = name
		}
		imports = append(imports, imp)
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })
	return imports
}

// GenerateImports generates the import section, standard library first
func (im *ImportManager) GenerateImports() string {
	imports := im.Imports()
	if len(imports) == 0 {
		return ""
	}

	var std, other []string
	for _, imp := range imports {
		line := fmt.Sprintf("%q", imp.Path)
		if imp.Alias != "" {
			line = imp.Alias + " " + line
		}
		if isStandardLibrary(imp.Path) {
			std = append(std, line)
		} else {
			other = append(other, line)
		}
	}

	if len(imports) == 1 {
		return fmt.Sprintf("import %s\n", append(std, other...)[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range std {
		result.WriteString("\t" + line + "\n")
	}
	if len(std) > 0 && len(other) > 0 {
		result.WriteString("\n")
	}
	for _, line := range other {
		result.WriteString("\t" + line + "\n")
	}
	result.WriteString(")\n")

	return result.String()
}

// isStandardLibrary reports an import path without a domain in its first element
func isStandardLibrary(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
