package parser

import "golang.org/x/tools/go/packages"

// LoadMode specifies what information to load from packages
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

const (
	// GeneratedMarker identifies files written by dtogen
	GeneratedMarker = "Code generated by dtogen"

	// MinimumGoVersion is the oldest go directive the generated code compiles with
	MinimumGoVersion = "1.18"
)
