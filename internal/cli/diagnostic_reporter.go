package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/errors"
)

// DiagnosticReporter renders source diagnostics and run errors for the user
type DiagnosticReporter struct {
	verbose   bool
	useColors bool
	out       io.Writer
	dumper    *spew.ConfigState
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:   verbose,
		useColors: !color.NoColor,
		out:       os.Stderr,
		dumper: &spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
			MaxDepth:                4,
		},
	}
}

// SetOutput redirects the reporter and turns colors off
func (r *DiagnosticReporter) SetOutput(out io.Writer) {
	r.out = out
	r.useColors = false
}

// ReportDiagnostics prints diagnostics in compiler style, in the order given
func (r *DiagnosticReporter) ReportDiagnostics(diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		r.ReportDiagnostic(d)
	}
}

// ReportDiagnostic prints one diagnostic:
// file:line:col: error DTO0001: message
func (r *DiagnosticReporter) ReportDiagnostic(d diagnostics.Diagnostic) {
	if !d.Location.IsEmpty() {
		r.colored(color.Bold).Fprintf(r.out, "%s: ", d.Location)
	}

	attr := color.FgYellow
	if d.IsError() {
		attr = color.FgRed
	}
	r.colored(attr, color.Bold).Fprintf(r.out, "%s %s", d.Severity, d.Kind.ID())
	fmt.Fprintf(r.out, ": %s\n", d.Message())

	if r.verbose {
		fmt.Fprintf(r.out, "   kind: %s\n", d.Kind)
	}
}

// ReportWarning prints a warning that is not tied to a source location
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.colored(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "\nERROR: dtogen failed\n")
	fmt.Fprintf(r.out, "====================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		for _, e := range multi.Errors {
			r.reportGeneratorError(e)
		}
		return
	}

	var genErr errors.GeneratorError
	if stderrors.As(err, &genErr) {
		r.reportGeneratorError(genErr)
		return
	}

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
}

// reportGeneratorError reports a GeneratorError with full context and suggestions
func (r *DiagnosticReporter) reportGeneratorError(genErr errors.GeneratorError) {
	kind := genErr.ErrorCode().String()
	r.colored(color.FgRed, color.Bold).Fprintf(r.out, "Type: %s\n", kind)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(kind)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", genErr.Error())

	if loc := genErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}

	if ctx := genErr.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := genErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	if r.verbose {
		r.printErrorChain(genErr)
	}
}

// printContext prints context information sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

// printErrorChain prints every wrapped cause
func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for cause := stderrors.Unwrap(err); cause != nil; cause = stderrors.Unwrap(cause) {
		fmt.Fprintf(r.out, "   %d. %s\n", level, cause.Error())
		level++
	}
	fmt.Fprintf(r.out, "\n")
}

// Dump prints a labelled structural dump of v in verbose mode
func (r *DiagnosticReporter) Dump(label string, v interface{}) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.out, "[DEBUG] %s:\n%s", label, r.dumper.Sdump(v))
}

func (r *DiagnosticReporter) colored(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
