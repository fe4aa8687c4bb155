package generator

import (
	"fmt"
	"sort"

	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/pkg/dto"
)

// Names declared on every generated DTO type. A member whose output or setter
// name matches one of them is skipped.
const (
	ObserversChangedField  = "propertyChanged"
	ObserversChangingField = "propertyChanging"
	NotifyChangedMethod    = "notifyChanged"
	NotifyChangingMethod   = "notifyChanging"
	ApplyMethod            = "Apply"
	ToDTOMethod            = "ToDTO"
	NotNilDirective        = "//dto:notnil"
	RoleTagKey             = "dto"
)

// ReservedNames returns the names every DTO type declares itself, sorted
func ReservedNames() []string {
	names := []string{
		dto.PropertyChangedMethod,
		dto.PropertyChangingMethod,
		ApplyMethod,
		ObserversChangedField,
		ObserversChangingField,
		NotifyChangedMethod,
		NotifyChangingMethod,
	}
	sort.Strings(names)
	return names
}

// Synthesize produces the declarations of one eligible container. Members are
// emitted in declaration order whatever order they are passed in, and members
// owned by another container are ignored. Roles are carried as a struct tag
// and never decide whether a member is emitted. A member whose generated names
// clash with an earlier declaration is skipped with a NameCollision warning. A
// container that already declares ToDTO gets no declarations at all.
func Synthesize(container *models.ContainerDescriptor, members []*models.MemberDescriptor) (*models.DeclarationSet, []diagnostics.Diagnostic) {
	if !container.Eligible() {
		return nil, nil
	}
	if container.Selectors[ToDTOMethod] {
		return nil, []diagnostics.Diagnostic{diagnostics.New(diagnostics.NameCollision, container.Location,
			container.Name, ToDTOMethod, container.Name)}
	}

	ordered := make([]*models.MemberDescriptor, 0, len(members))
	for _, m := range members {
		if m != nil && m.Owner != nil && m.Owner.QualifiedName == container.QualifiedName {
			ordered = append(ordered, m)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	set := &models.DeclarationSet{Container: container}
	set.Fragments = append(set.Fragments, models.Fragment{Kind: models.FragmentStruct, Name: container.DTOName})

	declared := make(map[string]bool)
	for _, name := range ReservedNames() {
		declared[name] = true
	}

	var diags []diagnostics.Diagnostic
	for _, m := range ordered {
		setter := m.SetterName()
		if clash, ok := firstDeclared(declared, m.OutputName, setter); ok {
			diags = append(diags, diagnostics.New(diagnostics.NameCollision, m.Location,
				container.Name+"."+m.Name, clash, container.DTOName))
			continue
		}
		declared[m.OutputName] = true
		declared[setter] = true

		set.Fragments = append(set.Fragments,
			models.Fragment{
				Kind:   models.FragmentField,
				Name:   m.OutputName,
				Member: m,
				Tag:    roleTag(m.Roles),
			},
			models.Fragment{
				Kind:       models.FragmentSetter,
				Name:       setter,
				Member:     m,
				Directives: setterDirectives(m),
			},
		)
	}

	set.Fragments = append(set.Fragments,
		models.Fragment{Kind: models.FragmentObservers, Name: dto.PropertyChangedMethod},
		models.Fragment{Kind: models.FragmentObservers, Name: dto.PropertyChangingMethod},
		models.Fragment{Kind: models.FragmentToDTO, Name: ToDTOMethod},
		models.Fragment{Kind: models.FragmentApply, Name: ApplyMethod},
	)

	return set, diags
}

func firstDeclared(declared map[string]bool, names ...string) (string, bool) {
	for _, name := range names {
		if declared[name] {
			return name, true
		}
	}
	return "", false
}

// roleTag renders the roles as a struct tag, e.g. dto:"Create,Read"
func roleTag(roles dto.RoleSet) string {
	return fmt.Sprintf("%s:%q", RoleTagKey, roles.String())
}

func setterDirectives(m *models.MemberDescriptor) []string {
	if !m.NotNilContract {
		return nil
	}
	return []string{NotNilDirective + " " + m.OutputName}
}
