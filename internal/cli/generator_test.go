package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dtogen/internal/utils"
)

const orderSource = `package orders

//dto::source
type Order struct {
	//dto::member -Roles=Create,Read
	Ref *string
	//dto::member
	Total int
}

//dto::source
type Watched struct {
	//dto::member
	Name string
}

func (w *Watched) OnPropertyChanged(handler func(property string)) {}
`

func newModule(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.21\n")
	writeFile(t, filepath.Join(root, "orders", "order.go"), orderSource)
	writeFile(t, filepath.Join(root, "plain", "plain.go"), "package plain\n\ntype Plain struct{ X int }\n")
	return root
}

func newTestGenerator(t *testing.T, root string) (*Generator, *bytes.Buffer) {
	t.Helper()
	cfg, err := LoadConfig(root)
	require.NoError(t, err)

	var out bytes.Buffer
	ds := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	ds.SetOutput(&out, &out)
	return NewGenerator(cfg, ds), &out
}

func TestGenerator_GenerateAndRerun(t *testing.T) {
	root := newModule(t)
	target := filepath.Join(root, "orders", "autogen_dto.go")

	g, out := newTestGenerator(t, root)
	summary, err := g.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	assert.Equal(t, "example.com/shop", summary.Module)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.PackagesProcessed)
	assert.Equal(t, 2, summary.ContainersFound)
	assert.Equal(t, 1, summary.DTOsGenerated)
	assert.Equal(t, 2, summary.Errors, "duplicate capability and its member")
	assert.True(t, summary.Failed(false))
	assert.Equal(t, []string{target}, summary.GeneratedFiles)
	assert.Contains(t, out.String(), "DTO0001")

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "type OrderDTO struct {")
	assert.Contains(t, string(content), "//dto:notnil Ref")
	assert.NoFileExists(t, filepath.Join(root, "plain", "autogen_dto.go"))
	assert.FileExists(t, filepath.Join(root, ManifestFileName))

	// a second run over unchanged sources writes nothing
	g, _ = newTestGenerator(t, root)
	again, err := g.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)
	assert.Empty(t, again.GeneratedFiles)
	assert.Equal(t, []string{target}, again.UnchangedFiles)
	assert.NotEqual(t, summary.RunID, again.RunID)

	after, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, after)
}

func TestGenerator_RemovesStaleOutput(t *testing.T) {
	root := newModule(t)
	target := filepath.Join(root, "orders", "autogen_dto.go")

	g, _ := newTestGenerator(t, root)
	_, err := g.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)
	require.FileExists(t, target)

	writeFile(t, filepath.Join(root, "orders", "order.go"), "package orders\n\ntype Order struct{ Total int }\n")

	g, _ = newTestGenerator(t, root)
	summary, err := g.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, summary.RemovedFiles)
	assert.NoFileExists(t, target)
}

func TestGenerator_CheckWritesNothing(t *testing.T) {
	root := newModule(t)

	g, _ := newTestGenerator(t, root)
	summary, err := g.Run(context.Background(), ModeCheck)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DTOsGenerated)
	assert.Equal(t, 2, summary.Errors)
	assert.Empty(t, summary.GeneratedFiles)
	assert.NoFileExists(t, filepath.Join(root, "orders", "autogen_dto.go"))
	assert.NoFileExists(t, filepath.Join(root, ManifestFileName))
}

func TestGenerator_Clean(t *testing.T) {
	root := newModule(t)

	g, _ := newTestGenerator(t, root)
	_, err := g.Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	removed, err := g.Clean()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "orders", "autogen_dto.go")}, removed)
	assert.NoFileExists(t, filepath.Join(root, ManifestFileName))
}

func TestGenerator_RejectsInvalidConfig(t *testing.T) {
	root := newModule(t)
	cfg, err := LoadConfig(root)
	require.NoError(t, err)
	cfg.Patterns = []string{"./missing"}

	var out bytes.Buffer
	ds := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	ds.SetOutput(&out, &out)

	_, err = NewGenerator(cfg, ds).Run(context.Background(), ModeGenerate)
	assert.ErrorContains(t, err, "directory does not exist")
}
