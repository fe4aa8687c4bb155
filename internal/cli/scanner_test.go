package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dtogen/internal/utils"
)

const generatedHeader = "// Code generated by dtogen. DO NOT EDIT.\n\npackage p\n"

func TestDirectoryScanner_ResolveRoots(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "models", "m.go"), "package models\n")

	roots, err := NewDirectoryScanner().ResolveRoots(base, []string{"./...", "./models", "models/...", "..."})
	require.NoError(t, err)
	assert.Equal(t, []Root{
		{Pattern: "./...", Dir: base, Recursive: true},
		{Pattern: "./models", Dir: filepath.Join(base, "models")},
		{Pattern: "models/...", Dir: filepath.Join(base, "models"), Recursive: true},
		{Pattern: "...", Dir: base, Recursive: true},
	}, roots)

	_, err = NewDirectoryScanner().ResolveRoots(base, []string{"./missing/..."})
	assert.ErrorContains(t, err, "directory does not exist")
}

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	base := t.TempDir()
	top := filepath.Join(base, "autogen_dto.go")
	nested := filepath.Join(base, "a", "autogen_dto.go")
	handwritten := filepath.Join(base, "b", "autogen_dto.go")
	writeFile(t, top, generatedHeader)
	writeFile(t, nested, generatedHeader)
	writeFile(t, handwritten, "package b\n")

	cleaner := NewCleaner("autogen_dto.go")

	removed, err := cleaner.CleanGeneratedFiles(base, []string{"."})
	require.NoError(t, err)
	assert.Equal(t, []string{top}, removed, "a plain directory is not recursed")
	assert.FileExists(t, nested)

	removed, err = cleaner.CleanGeneratedFiles(base, []string{"./..."})
	require.NoError(t, err)
	assert.Equal(t, []string{nested}, removed)
	assert.FileExists(t, handwritten)
}

func TestModuleResolver(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "orders", "o.go"), "package orders\n")

	resolver := NewModuleResolver()
	module, err := resolver.ResolveModule(filepath.Join(root, "orders"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", module.Path)
	assert.Equal(t, "1.22", module.GoVersion)

	path, err := resolver.BuildPackagePath(module, filepath.Join(root, "orders"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop/orders", path)

	path, err = resolver.BuildPackagePath(module, root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", path)

	_, err = resolver.BuildPackagePath(&utils.ModuleInfo{Path: "x", Dir: filepath.Join(root, "orders")}, root)
	assert.Error(t, err)
}
