// Package extractor resolves annotated fields into member descriptors.
package extractor

import (
	"context"

	"github.com/toyz/dtogen/internal/annotations"
	"github.com/toyz/dtogen/internal/classifier"
	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/pkg/dto"
)

// Extract resolves one annotated field. The owning container is classified again,
// so members can be extracted independently and in any order. When the container
// is not eligible the member yields an InvalidContainerForMember diagnostic and no
// descriptor. A canceled context yields ctx.Err() and nothing else.
func Extract(ctx context.Context, m *models.MemberSymbol, features models.HostFeatures) (*models.MemberDescriptor, []diagnostics.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	owner, _ := classifier.Classify(m.Container)
	if !owner.Eligible() {
		d := diagnostics.New(diagnostics.InvalidContainerForMember, m.Location, m.Container.Name, m.Name)
		return nil, []diagnostics.Diagnostic{d}, nil
	}

	canBeNil, isTypeParam := Nillable(m.Type)
	nullable := explicitlyNullable(m.Annotations)

	desc := &models.MemberDescriptor{
		Owner:          owner,
		Name:           m.Name,
		OutputName:     outputName(m),
		Type:           m.Type,
		Exported:       m.Exported,
		Nullable:       nullable,
		CanBeNil:       canBeNil,
		IsTypeParam:    isTypeParam,
		Roles:          memberRoles(m.Annotations),
		NotNilContract: NeedsNotNilContract(canBeNil, nullable, features),
		Index:          m.Index,
		Location:       m.Location,
	}
	return desc, nil, nil
}

// NeedsNotNilContract reports whether the generated setter carries a not-nil
// directive: the type can hold nil, the member is not marked nullable, and the
// host understands the directive.
func NeedsNotNilContract(canBeNil, nullable bool, features models.HostFeatures) bool {
	return canBeNil && !nullable && features.NotNilContracts
}

// memberRoles unions the roles of every member annotation. An annotation
// without -Roles contributes the full set.
func memberRoles(anns []*annotations.ParsedAnnotation) dto.RoleSet {
	if len(anns) == 0 {
		return dto.DefaultRoles()
	}

	var roles dto.RoleSet
	for _, ann := range anns {
		set := dto.DefaultRoles()
		if ann.HasParameter("Roles") {
			if parsed, err := dto.ParseRoles(ann.GetString("Roles")); err == nil {
				set = parsed
			}
		}
		roles = dto.Combine(roles, set)
	}
	return roles
}

// outputName is the first -Name given, or the field name
func outputName(m *models.MemberSymbol) string {
	for _, ann := range m.Annotations {
		if name := ann.GetString("Name"); name != "" {
			return name
		}
	}
	return m.Name
}

func explicitlyNullable(anns []*annotations.ParsedAnnotation) bool {
	for _, ann := range anns {
		if ann.GetBool("Nullable") {
			return true
		}
	}
	return false
}
