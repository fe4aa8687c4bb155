// Package classifier decides whether a container may have DTO declarations
// synthesized for it.
package classifier

import (
	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/models"
)

// DTOSuffix is appended to the container name when dto::source sets no Name
const DTOSuffix = "DTO"

// Classify returns the verdict for a container. It looks only at the container's
// annotations and method set, never at its members. A rejected candidate yields
// exactly one diagnostic; an eligible one, or a type that never asked to be a
// source, yields none.
func Classify(c *models.ContainerSymbol) (*models.ContainerDescriptor, *diagnostics.Diagnostic) {
	desc := &models.ContainerDescriptor{
		QualifiedName: c.QualifiedName(),
		Name:          c.Name,
		PkgPath:       c.PkgPath,
		Exported:      c.Exported,
		Verdict:       models.VerdictEligible,
		DTOName:       DTOName(c),
		TypeParams:    c.TypeParams,
		Location:      c.Location,
		Selectors:     c.Selectors,
	}

	if !c.Capabilities.Has(models.CapabilitySource) {
		return reject(desc, models.ReasonNotASource), nil
	}

	for _, protocol := range []models.Protocol{models.ProtocolPropertyChanged, models.ProtocolPropertyChanging} {
		if c.Protocols.Has(protocol) {
			d := diagnostics.New(diagnostics.DuplicateNotificationCapability, c.Location, c.Name, protocol.String())
			return reject(desc, models.ReasonDuplicateNotificationCapability), &d
		}
	}

	if conflict, ok := conflictingCapability(c.Capabilities); ok {
		d := diagnostics.New(diagnostics.ConflictingCapabilityAttribute, c.Location, c.Name, conflict.String())
		return reject(desc, models.ReasonConflictingCapabilityAttribute), &d
	}

	return desc, nil
}

// conflictingCapability finds a sibling annotation that already generates change
// notification. dto::observable only conflicts when it comes from an embedded type;
// dto::notify conflicts either way.
func conflictingCapability(caps models.Capabilities) (models.Capability, bool) {
	switch {
	case caps.HasInherited(models.CapabilityObservable):
		return models.CapabilityObservable, true
	case caps.Has(models.CapabilityNotify):
		return models.CapabilityNotify, true
	default:
		return 0, false
	}
}

// DTOName returns the name of the generated DTO type
func DTOName(c *models.ContainerSymbol) string {
	if c.Source != nil {
		if name := c.Source.GetString("Name"); name != "" {
			return name
		}
	}
	return c.Name + DTOSuffix
}

func reject(desc *models.ContainerDescriptor, reason models.RejectReason) *models.ContainerDescriptor {
	desc.Verdict = models.VerdictRejected
	desc.Reason = reason
	return desc
}
