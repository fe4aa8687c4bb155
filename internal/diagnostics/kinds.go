package diagnostics

import "fmt"

// Severity represents how serious a diagnostic is
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Kind is the stable identifier of a diagnostic
type Kind int

const (
	UnknownKind Kind = iota
	DuplicateNotificationCapability
	ConflictingCapabilityAttribute
	InvalidContainerForMember
	NameCollision
	InvalidAnnotation
)

// kindInfo describes how a kind is identified and rendered
type kindInfo struct {
	id       string
	name     string
	severity Severity
	format   string
}

var kinds = map[Kind]kindInfo{
	DuplicateNotificationCapability: {
		id:       "DTO0001",
		name:     "DuplicateNotificationCapability",
		severity: SeverityError,
		format:   "cannot apply dto::source to type %s, as it already implements the %s protocol",
	},
	ConflictingCapabilityAttribute: {
		id:       "DTO0002",
		name:     "ConflictingCapabilityAttribute",
		severity: SeverityError,
		format:   "cannot apply dto::source to type %s, as it already uses dto::%s (directly or through an embedded type)",
	},
	InvalidContainerForMember: {
		id:       "DTO0003",
		name:     "InvalidContainerForMember",
		severity: SeverityError,
		format:   "the field %s.%s cannot be used to generate a DTO member, as its containing type is not a valid dto::source target",
	},
	NameCollision: {
		id:       "DTO0004",
		name:     "NameCollision",
		severity: SeverityWarning,
		format:   "%s was skipped, as the generated name %s is already declared in %s",
	},
	InvalidAnnotation: {
		id:       "DTO0005",
		name:     "InvalidAnnotation",
		severity: SeverityError,
		format:   "invalid annotation on %s: %s",
	},
}

// Kinds returns every defined kind in identifier order
func Kinds() []Kind {
	return []Kind{
		DuplicateNotificationCapability,
		ConflictingCapabilityAttribute,
		InvalidContainerForMember,
		NameCollision,
		InvalidAnnotation,
	}
}

// ID returns the stable identifier, e.g. DTO0001
func (k Kind) ID() string {
	if info, ok := kinds[k]; ok {
		return info.id
	}
	return "DTO0000"
}

// String returns the kind name
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "Unknown"
}

// DefaultSeverity returns the severity diagnostics of this kind are reported with
func (k Kind) DefaultSeverity() Severity {
	if info, ok := kinds[k]; ok {
		return info.severity
	}
	return SeverityError
}

// Format interpolates the message arguments into the kind's message template
func (k Kind) Format(args ...string) string {
	info, ok := kinds[k]
	if !ok {
		return fmt.Sprint(toAny(args)...)
	}
	return fmt.Sprintf(info.format, toAny(args)...)
}

func toAny(args []string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
