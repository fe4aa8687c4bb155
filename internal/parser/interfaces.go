package parser

import (
	"context"

	"github.com/toyz/dtogen/internal/models"
)

// SymbolLoader produces the symbol view a pipeline run works on
type SymbolLoader interface {
	Load(ctx context.Context, patterns ...string) (*models.Program, error)
	ParseSource(filename, source string) (*models.Program, error)
}
