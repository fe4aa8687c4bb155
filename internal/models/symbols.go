package models

import (
	"go/token"
	"go/types"

	"github.com/toyz/dtogen/internal/annotations"
	"github.com/toyz/dtogen/internal/diagnostics"
)

// Capability is a container-level annotation that takes part in classification
type Capability uint8

const (
	CapabilitySource Capability = 1 << iota
	CapabilityObservable
	CapabilityNotify
)

// String returns the annotation name of a single capability
func (c Capability) String() string {
	switch c {
	case CapabilitySource:
		return "source"
	case CapabilityObservable:
		return "observable"
	case CapabilityNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// Capabilities is the flattened capability set of a container over its embedding chain.
// Own holds annotations on the type itself, Inherited the union over every embedded type.
type Capabilities struct {
	Own       Capability
	Inherited Capability
}

// Effective returns the union of own and inherited capabilities
func (c Capabilities) Effective() Capability {
	return c.Own | c.Inherited
}

// Has reports whether the capability is present directly or through embedding
func (c Capabilities) Has(capability Capability) bool {
	return c.Effective()&capability != 0
}

// HasOwn reports whether the capability is declared on the type itself
func (c Capabilities) HasOwn(capability Capability) bool {
	return c.Own&capability != 0
}

// HasInherited reports whether the capability comes from an embedded type
func (c Capabilities) HasInherited(capability Capability) bool {
	return c.Inherited&capability != 0
}

// Protocol is a change-notification method set a container already implements
type Protocol uint8

const (
	ProtocolPropertyChanged Protocol = 1 << iota
	ProtocolPropertyChanging
)

// String returns the interface name of a single protocol
func (p Protocol) String() string {
	switch p {
	case ProtocolPropertyChanged:
		return "PropertyChangedNotifier"
	case ProtocolPropertyChanging:
		return "PropertyChangingNotifier"
	default:
		return "unknown"
	}
}

// Has reports whether every protocol in other is present
func (p Protocol) Has(other Protocol) bool {
	return other != 0 && p&other == other
}

// Program is the loaded view of every package a run looks at
type Program struct {
	Fset     *token.FileSet
	Packages []*Package
}

// Package represents one loaded Go package and its candidate containers
type Package struct {
	Name      string         // package name
	Path      string         // import path
	Dir       string         // directory of the package sources
	GoVersion string         // go directive of the owning module, e.g. "1.21"
	Types     *types.Package // nil when the package failed to type-check
	Files     []string       // non-generated source files, sorted

	// Scope holds the package-level names declared in non-generated files
	Scope map[string]bool

	// Containers are sorted by file name, then offset
	Containers []*ContainerSymbol

	// Diagnostics found while reading annotations, in source order
	Diagnostics []diagnostics.Diagnostic
}

// Declares reports whether the package already declares name outside generated files
func (p *Package) Declares(name string) bool {
	return p != nil && p.Scope[name]
}

// TypeParam is a type parameter of a generic container
type TypeParam struct {
	Name       string
	Constraint types.Type
}

// ContainerSymbol is a struct type declaration that carries dto annotations itself
// or has at least one annotated field
type ContainerSymbol struct {
	Name     string
	PkgPath  string
	Exported bool
	Location diagnostics.Location

	Named      *types.Named
	TypeParams []TypeParam

	// Source is the type's own dto::source annotation, nil when absent
	Source       *annotations.ParsedAnnotation
	Capabilities Capabilities
	Protocols    Protocol

	// Selectors holds the names of the type's direct fields and of the methods
	// declared on it in non-generated files
	Selectors map[string]bool

	// Members are the annotated fields in declaration order
	Members []*MemberSymbol
}

// QualifiedName returns the fully-qualified name of the container
func (c *ContainerSymbol) QualifiedName() string {
	if c.PkgPath == "" {
		return c.Name
	}
	return c.PkgPath + "." + c.Name
}

// MemberSymbol is a struct field annotated with dto::member
type MemberSymbol struct {
	Container *ContainerSymbol
	Name      string
	Exported  bool
	Embedded  bool
	Type      types.Type
	Index     int // field index within the struct
	Location  diagnostics.Location

	// Annotations are the field's dto::member annotations in comment order
	Annotations []*annotations.ParsedAnnotation
}
