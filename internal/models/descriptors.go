package models

import (
	"go/types"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/pkg/dto"
)

// Verdict is the classification outcome of a container
type Verdict int

const (
	VerdictEligible Verdict = iota
	VerdictRejected
)

// String returns the string representation of the verdict
func (v Verdict) String() string {
	if v == VerdictEligible {
		return "Eligible"
	}
	return "Rejected"
}

// RejectReason explains a Rejected verdict
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonDuplicateNotificationCapability
	ReasonConflictingCapabilityAttribute
	// ReasonNotASource marks a type that has annotated fields but no dto::source
	ReasonNotASource
)

// String returns the string representation of the reason
func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "None"
	case ReasonDuplicateNotificationCapability:
		return "DuplicateNotificationCapability"
	case ReasonConflictingCapabilityAttribute:
		return "ConflictingCapabilityAttribute"
	case ReasonNotASource:
		return "NotASource"
	default:
		return "Unknown"
	}
}

// HostFeatures is what the target toolchain supports for generated code
type HostFeatures struct {
	// NotNilContracts enables //dto:notnil directives on generated setters
	NotNilContracts bool
}

// ContainerDescriptor is the immutable classification result for one container
type ContainerDescriptor struct {
	QualifiedName string
	Name          string
	PkgPath       string
	Exported      bool
	Verdict       Verdict
	Reason        RejectReason
	DTOName       string
	TypeParams    []TypeParam
	Location      diagnostics.Location

	// Selectors are the field and method names the container already declares
	Selectors map[string]bool
}

// Eligible reports whether declarations may be synthesized for the container
func (c *ContainerDescriptor) Eligible() bool {
	return c != nil && c.Verdict == VerdictEligible
}

// MemberDescriptor is one extracted member of an eligible container
type MemberDescriptor struct {
	Owner *ContainerDescriptor // back-reference only

	Name       string
	OutputName string
	Type       types.Type
	Exported   bool

	// Nullable is the explicit -Nullable flag
	Nullable bool
	// CanBeNil reports that the type itself can hold nil
	CanBeNil bool
	// IsTypeParam reports an unconstrained or nillable type parameter
	IsTypeParam bool

	Roles          dto.RoleSet
	NotNilContract bool

	Index    int
	Location diagnostics.Location
}

// SetterName returns the name of the generated setter, Set followed by the
// output name with its first letter upper-cased
func (m *MemberDescriptor) SetterName() string {
	r, size := utf8.DecodeRuneInString(m.OutputName)
	return "Set" + string(unicode.ToUpper(r)) + m.OutputName[size:]
}
