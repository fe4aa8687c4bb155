package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	assert.True(t, exists)
	assert.Equal(t, 42, value)

	_, exists = cache.Get("nonexistent")
	assert.False(t, exists)

	cache.Delete("key1")
	_, exists = cache.Get("key1")
	assert.False(t, exists)

	cache.Set("a", 1)
	cache.Set("b", 2)
	assert.Equal(t, 2, cache.Size())
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCacheWithSize[string, int](2)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Get("a")
	cache.Set("c", 3)

	_, hasA := cache.Get("a")
	_, hasB := cache.Get("b")
	assert.True(t, hasA)
	assert.False(t, hasB)
}

func TestCache_FileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	writeFile(t, path, "one")

	cache := NewCache[string, string]()
	require.NoError(t, cache.SetWithFileInfo(path, "one", path))

	value, ok := cache.GetWithFileValidation(path, path)
	assert.True(t, ok)
	assert.Equal(t, "one", value)

	writeFile(t, path, "changed content")
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	_, ok = cache.GetWithFileValidation(path, path)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestFileReader_HasHeaderMarker(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "gen.go")
	handwritten := filepath.Join(dir, "user.go")
	late := filepath.Join(dir, "late.go")
	writeFile(t, generated, "// Code generated by dtogen. DO NOT EDIT.\n\npackage p\n")
	writeFile(t, handwritten, "// Package p does things.\npackage p\n")
	writeFile(t, late, "package p\n\n// Code generated by dtogen. DO NOT EDIT.\n")

	reader := NewFileReader()

	ok, err := reader.HasHeaderMarker(generated, "Code generated by dtogen")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reader.HasHeaderMarker(handwritten, "Code generated by dtogen")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = reader.HasHeaderMarker(late, "Code generated by dtogen")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reader.HasHeaderMarker(filepath.Join(dir, "missing.go"), "x")
	assert.Error(t, err)
}

func TestFileReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "hello")

	reader := NewFileReader()
	content, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	_, err = reader.ReadFile("")
	assert.Error(t, err)
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	root := t.TempDir()
	marker := "Code generated by dtogen"
	header := "// " + marker + ". DO NOT EDIT.\n\npackage p\n"

	writeFile(t, filepath.Join(root, "a", "autogen_dto.go"), header)
	writeFile(t, filepath.Join(root, "a", "b", "autogen_dto.go"), header)
	writeFile(t, filepath.Join(root, "c", "autogen_dto.go"), "package c\n")
	writeFile(t, filepath.Join(root, "vendor", "x", "autogen_dto.go"), header)
	writeFile(t, filepath.Join(root, "a", "model.go"), "package p\n")

	removed, err := NewFileProcessor().CleanDirectories([]string{root}, "autogen_dto.go", marker)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a", "autogen_dto.go"),
		filepath.Join(root, "a", "b", "autogen_dto.go"),
	}, removed)
	assert.FileExists(t, filepath.Join(root, "c", "autogen_dto.go"))
	assert.FileExists(t, filepath.Join(root, "vendor", "x", "autogen_dto.go"))
	assert.FileExists(t, filepath.Join(root, "a", "model.go"))
}

func TestFileProcessor_WalkFilesWithGoFilter(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"main.go", "main_test.go", "autogen_dto.go", "README.md", "svc/service.go"} {
		writeFile(t, filepath.Join(root, name), "package x\n")
	}

	files, err := NewFileProcessor().WalkFiles(root, FileWalkOptions{
		FileFilter:      DefaultGoFileFilter("autogen_dto.go"),
		DirectoryFilter: DefaultDirectoryFilter(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "main.go"), filepath.Join(root, "svc", "service.go")}, files)
}

func TestGoModParser_ParseModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "internal", "x", "x.go"), "package x\n")

	parser := NewGoModParser(nil)
	found, err := parser.FindGoModFile(filepath.Join(root, "internal", "x"))
	require.NoError(t, err)

	info, err := parser.ParseModule(found)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", info.Path)
	assert.Equal(t, "1.22", info.GoVersion)
	assert.Equal(t, root, info.Dir)

	_, err = parser.ParseModule(filepath.Join(root, "internal", "x", "x.go"))
	assert.Error(t, err)
}

func TestFormatGoCodeString(t *testing.T) {
	formatted, err := FormatGoCodeString("package p\nfunc  F( ) {  }\n")
	require.NoError(t, err)
	assert.Equal(t, "package p\n\nfunc F() {}\n", formatted)

	original := "package p\nfunc {"
	out, err := FormatGoCodeString(original)
	assert.Error(t, err)
	assert.Equal(t, original, out)
}

func TestValidateGeneratedFileName(t *testing.T) {
	validate := ValidateGeneratedFileName("output_file")
	assert.NoError(t, validate("autogen_dto.go"))
	assert.Error(t, validate(""))
	assert.Error(t, validate("dir/autogen_dto.go"))
	assert.Error(t, validate("autogen_dto.txt"))
	assert.Error(t, validate("autogen_test.go"))

	var verr ValidationError
	assert.ErrorAs(t, validate("x.txt"), &verr)
	assert.Equal(t, "output_file", verr.Field)
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticWarn)
	d.SetOutput(&out, &errOut)

	d.Error("broken %d", 1)
	d.Warn("careful")
	d.Info("hidden")
	d.Verbose("hidden too")

	assert.Equal(t, "[ERROR] broken 1\n", errOut.String())
	assert.Equal(t, "[WARN] careful\n", out.String())
	assert.False(t, d.Enabled(DiagnosticInfo))
}

func TestDiagnosticSystem_SummaryIsSorted(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Summary("Done", map[string]interface{}{"b": 2, "a": 1})
	assert.Equal(t, "\nDone\n   a: 1\n   b: 2\n\n", out.String())
}
