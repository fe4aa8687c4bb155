package templates

import (
	"go/types"
	"strconv"
	"strings"

	"github.com/toyz/dtogen/internal/models"
)

// TemplateUtils provides common utilities for template generation
type TemplateUtils struct{}

// NewTemplateUtils creates a new template utilities instance
func NewTemplateUtils() *TemplateUtils {
	return &TemplateUtils{}
}

// TypeParamsDecl renders a type parameter list with constraints, e.g. [T any, N Number].
// It returns "" for a non-generic container.
func (tu *TemplateUtils) TypeParamsDecl(params []models.TypeParam, qf types.Qualifier) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		constraint := "any"
		if p.Constraint != nil {
			constraint = types.TypeString(p.Constraint, qf)
		}
		parts[i] = p.Name + " " + constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TypeArgs renders the type parameter names as arguments, e.g. [T, N]
func (tu *TemplateUtils) TypeArgs(params []models.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// TypeExpr renders a type as it is written in the generated package
func (tu *TemplateUtils) TypeExpr(t types.Type, qf types.Qualifier) string {
	return types.TypeString(t, qf)
}

// QuoteString wraps a string in quotes for code generation
func (tu *TemplateUtils) QuoteString(s string) string {
	return strconv.Quote(s)
}

// DefaultTemplateUtils provides a global instance for convenience
var DefaultTemplateUtils = NewTemplateUtils()
