package generator

import "github.com/toyz/dtogen/internal/models"

// CodeGenerator renders synthesized declarations into source files
type CodeGenerator interface {
	GeneratePackage(pkg *models.Package, sets []*models.DeclarationSet) (*models.GeneratedFile, error)
	OutputFile() string
}

var _ CodeGenerator = (*Generator)(nil)
