package annotations

import (
	"errors"
	"fmt"
	"strings"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
	// Detail is the error message without the location prefix
	Detail() string
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

func withLocation(loc SourceLocation, msg string) string {
	if loc.IsEmpty() {
		return msg
	}
	return loc.String() + ": " + msg
}

func withHint(msg, hint string) string {
	if hint == "" {
		return msg
	}
	return msg + ". " + hint
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string         // Parameter name that failed validation
	Expected  string         // What was expected
	Actual    string         // What was provided
	Loc       SourceLocation // Where the error occurred
	Hint      string         // Suggested fix
}

func (e *ValidationError) Detail() string {
	return withHint(fmt.Sprintf("parameter '%s' validation failed: expected %s, got %s",
		e.Parameter, e.Expected, e.Actual), e.Hint)
}

func (e *ValidationError) Error() string            { return withLocation(e.Loc, e.Detail()) }
func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a syntax parsing error
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Detail() string {
	return withHint("syntax error: "+e.Msg, e.Hint)
}

func (e *SyntaxError) Error() string            { return withLocation(e.Loc, e.Detail()) }
func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents a schema-related error
type SchemaError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SchemaError) Detail() string {
	return withHint("schema error: "+e.Msg, e.Hint)
}

func (e *SchemaError) Error() string            { return withLocation(e.Loc, e.Detail()) }
func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError represents an error during annotation type registration
type RegistrationError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred (optional)
	Hint string         // Suggested fix
}

func (e *RegistrationError) Detail() string {
	return withHint("registration error: "+e.Msg, e.Hint)
}

func (e *RegistrationError) Error() string            { return withLocation(e.Loc, e.Detail()) }
func (e *RegistrationError) Location() SourceLocation { return e.Loc }
func (e *RegistrationError) Suggestion() string       { return e.Hint }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

// MultipleAnnotationErrors represents multiple annotation errors collected together
type MultipleAnnotationErrors struct {
	Errors []AnnotationError
}

func (e *MultipleAnnotationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple annotation errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for error inspection
func (e *MultipleAnnotationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// HasType returns true if any error of the specified type exists
func (e *MultipleAnnotationErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code() == code {
			return true
		}
	}
	return false
}

// AsAnnotationError extracts an AnnotationError from err, if there is one
func AsAnnotationError(err error) (AnnotationError, bool) {
	var annErr AnnotationError
	if errors.As(err, &annErr) {
		return annErr, true
	}
	return nil, false
}

// NewSyntaxErrorWithContext creates a syntax error with context-aware suggestions
func NewSyntaxErrorWithContext(msg string, loc SourceLocation, context string) *SyntaxError {
	return &SyntaxError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSyntaxSuggestion(msg, context),
	}
}

// NewValidationErrorWithContext creates a validation error with context-aware suggestions
func NewValidationErrorWithContext(parameter, expected, actual string, loc SourceLocation, annotationType AnnotationType) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Expected:  expected,
		Actual:    actual,
		Loc:       loc,
		Hint:      generateValidationSuggestion(parameter, annotationType),
	}
}

// NewSchemaErrorWithContext creates a schema error with context-aware suggestions
func NewSchemaErrorWithContext(msg string, loc SourceLocation, annotationType AnnotationType) *SchemaError {
	return &SchemaError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSchemaSuggestion(msg, annotationType),
	}
}

// generateSyntaxSuggestion provides context-aware suggestions for syntax errors
func generateSyntaxSuggestion(msg, context string) string {
	msg = strings.ToLower(msg)
	context = strings.ToLower(context)

	switch {
	case strings.Contains(msg, "missing annotation type"):
		return "Try: //dto::source or //dto::member -Roles=Read"
	case strings.Contains(msg, "invalid annotation prefix"):
		return "Annotation must start with '//dto::' (note the double colon)"
	case strings.Contains(msg, "unterminated"), strings.Contains(msg, "quote"):
		return "Make sure quoted strings are properly closed with matching quotes"
	case strings.Contains(context, "member"):
		return "Member format: //dto::member [-Roles=Create,Read] [-Name=Alias] [-Nullable]"
	case strings.Contains(context, "source"):
		return "Source format: //dto::source [-Name=TypeName]"
	default:
		return "Parameters should be in format '-ParamName=Value' or '-FlagName' for boolean flags"
	}
}

// generateValidationSuggestion provides suggestions for validation errors
func generateValidationSuggestion(parameter string, annotationType AnnotationType) string {
	switch parameter {
	case "Roles":
		return "Roles must combine Create, Read, Update and Delete. Example: -Roles=Create,Read"
	case "Name":
		if annotationType == SourceAnnotation {
			return "Name must be a Go identifier for the generated type. Example: -Name=UserView"
		}
		return "Name must be a Go identifier for the generated member. Example: -Name=DisplayName"
	case "Nullable":
		return "Nullable is a boolean flag. Use: -Nullable (no value needed)"
	default:
		return ""
	}
}

// generateSchemaSuggestion provides context-aware suggestions for schema errors
func generateSchemaSuggestion(msg string, annotationType AnnotationType) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "unknown annotation type"):
		return "Supported annotation types: source, member, observable, notify"
	case strings.Contains(msg, "unknown parameter"):
		switch annotationType {
		case SourceAnnotation:
			return "Source annotation supports: Name"
		case MemberAnnotation:
			return "Member annotation supports: Roles, Name, Nullable"
		default:
			return fmt.Sprintf("%s annotation takes no parameters", annotationType)
		}
	default:
		return ""
	}
}
