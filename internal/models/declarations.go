package models

// FragmentKind identifies a generated declaration
type FragmentKind int

const (
	FragmentStruct FragmentKind = iota
	FragmentField
	FragmentObservers
	FragmentSetter
	FragmentToDTO
	FragmentApply
)

// String returns the string representation of the fragment kind
func (k FragmentKind) String() string {
	switch k {
	case FragmentStruct:
		return "struct"
	case FragmentField:
		return "field"
	case FragmentObservers:
		return "observers"
	case FragmentSetter:
		return "setter"
	case FragmentToDTO:
		return "to_dto"
	case FragmentApply:
		return "apply"
	default:
		return "unknown"
	}
}

// Fragment is one declaration of a DeclarationSet
type Fragment struct {
	Kind FragmentKind
	Name string

	// Member is set for field and setter fragments
	Member *MemberDescriptor

	// Directives are comment lines emitted above the declaration
	Directives []string

	// Tag is the struct tag of a field fragment
	Tag string
}

// DeclarationSet is the ordered output for one eligible container
type DeclarationSet struct {
	Container *ContainerDescriptor
	Fragments []Fragment
}

// Members returns the members that received a field, in order
func (d *DeclarationSet) Members() []*MemberDescriptor {
	var members []*MemberDescriptor
	for _, f := range d.Fragments {
		if f.Kind == FragmentField {
			members = append(members, f.Member)
		}
	}
	return members
}

// Names returns the declared fragment names in order
func (d *DeclarationSet) Names() []string {
	names := make([]string, len(d.Fragments))
	for i, f := range d.Fragments {
		names[i] = f.Name
	}
	return names
}

// OfKind returns the fragments of a kind, in order
func (d *DeclarationSet) OfKind(kind FragmentKind) []Fragment {
	var out []Fragment
	for _, f := range d.Fragments {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// GeneratedFile is the rendered output for one package
type GeneratedFile struct {
	PackageName string
	PackagePath string
	FilePath    string
	Content     string

	// Types lists the generated DTO type names in file order
	Types []string
}
