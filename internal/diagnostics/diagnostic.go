// Package diagnostics holds the structured records produced while classifying,
// extracting and synthesizing DTO declarations. Records are values: stages
// return them and the pipeline merges them in a stable order. Rendering them
// to a terminal is left to the caller.
package diagnostics

import (
	"fmt"
	"go/token"
)

// Location represents where a diagnostic attaches in source code
type Location struct {
	File   string // file path
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// LocationOf converts a token position into a Location
func LocationOf(pos token.Position) Location {
	return Location{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// String returns a formatted string representation of the location
func (l Location) String() string {
	if l.File == "" {
		return "unknown location"
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsEmpty returns true if the location has no useful information
func (l Location) IsEmpty() bool {
	return l.File == ""
}

// Diagnostic is a single structured report. Args hold the names interpolated
// into the kind's message, container first.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Location Location
	Args     []string
}

// New creates a diagnostic with the kind's default severity
func New(kind Kind, loc Location, args ...string) Diagnostic {
	return Diagnostic{
		Severity: kind.DefaultSeverity(),
		Kind:     kind,
		Location: loc,
		Args:     append([]string(nil), args...),
	}
}

// Message returns the human-readable message
func (d Diagnostic) Message() string {
	return d.Kind.Format(d.Args...)
}

// IsError reports whether the diagnostic has error severity
func (d Diagnostic) IsError() bool {
	return d.Severity >= SeverityError
}

// String renders the diagnostic in compiler style:
// file:line:col: error DTO0001: message
func (d Diagnostic) String() string {
	if d.Location.IsEmpty() {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Kind.ID(), d.Message())
	}
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Kind.ID(), d.Message())
}
