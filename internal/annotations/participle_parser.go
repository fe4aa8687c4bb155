package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the number of distinct comment texts kept parsed
const defaultCacheSize = 1024

// AnnotationParser parses a single annotation comment
type AnnotationParser interface {
	ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error)
}

// ParticipleParser represents a parser using alecthomas/participle
type ParticipleParser struct {
	parser   *participle.Parser[annotationAST]
	registry AnnotationRegistry
	cache    *lru.Cache[string, *ParsedAnnotation]
}

// annotationAST is the grammar root: //dto::kind [-Param[=Value]]...
type annotationAST struct {
	Comment string      `parser:"@Comment"`
	Prefix  string      `parser:"@Prefix"`
	Kind    string      `parser:"@Ident"`
	Params  []*paramAST `parser:"@@*"`
}

// paramAST is a named parameter or boolean flag
type paramAST struct {
	Pos   lexer.Position
	Dash  string    `parser:"@Dash"`
	Name  string    `parser:"@Ident"`
	Value *valueAST `parser:"@@?"`
}

// valueAST is the right hand side of -Param=Value
type valueAST struct {
	Equals bool   `parser:"@Equals"`
	Text   string `parser:"@(String | Bare)"`
}

var annotationLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Comment", Pattern: `//`},
		{Name: "Prefix", Pattern: `dto::`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Equals", Pattern: `=`, Action: lexer.Push("Value")},
	},
	"Value": {
		{Name: "String", Pattern: `"(?:\\"|[^"])*"|'[^']*'`, Action: lexer.Pop()},
		{Name: "Bare", Pattern: `[^\s"']+`, Action: lexer.Pop()},
	},
})

// NewParticipleParser creates a new parser using participle
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	parser := participle.MustBuild[annotationAST](
		participle.Lexer(annotationLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	cache, err := lru.New[string, *ParsedAnnotation](defaultCacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create annotation cache: %v", err))
	}

	return &ParticipleParser{
		parser:   parser,
		registry: registry,
		cache:    cache,
	}
}

// IsAnnotation reports whether a comment line carries a dto:: annotation
func IsAnnotation(comment string) bool {
	content, ok := strings.CutPrefix(strings.TrimSpace(comment), "//")
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(content), AnnotationPrefix)
}

// ParseAnnotation parses an annotation comment. The returned value is owned by the caller.
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	text := strings.TrimSpace(comment)

	if cached, ok := p.cache.Get(text); ok {
		parsed := cached.clone()
		parsed.Location = location
		return parsed, nil
	}

	ast, err := p.parser.ParseString("", text)
	if err != nil {
		return nil, p.syntaxError(err, text, location)
	}

	parsed, err := p.build(ast, text, location)
	if err != nil {
		return nil, err
	}

	p.cache.Add(text, parsed.clone())
	return parsed, nil
}

// syntaxError converts a participle error into a SyntaxError at the offending column
func (p *ParticipleParser) syntaxError(err error, text string, location SourceLocation) *SyntaxError {
	msg := err.Error()
	loc := location

	var perr participle.Error
	if errors.As(err, &perr) {
		msg = perr.Message()
		if pos := perr.Position(); pos.Column > 0 && !loc.IsEmpty() {
			loc.Column += pos.Column - 1
		}
	}

	switch {
	case !strings.HasPrefix(text, "//"):
		msg = "annotation must start with '//'"
	case !IsAnnotation(text):
		msg = "invalid annotation prefix"
	case strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(text, "//")), AnnotationPrefix)) == "":
		msg = "missing annotation type"
	}

	return NewSyntaxErrorWithContext(msg, loc, text)
}

// build converts the grammar tree into a ParsedAnnotation and validates it against its schema
func (p *ParticipleParser) build(ast *annotationAST, text string, location SourceLocation) (*ParsedAnnotation, error) {
	annotationType, err := p.parseAnnotationType(ast.Kind, location)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        text,
	}

	var schema *AnnotationSchema
	if p.registry != nil {
		s, err := p.registry.GetSchema(annotationType)
		if err != nil {
			return nil, NewSchemaErrorWithContext(err.Error(), location, annotationType)
		}
		schema = &s
	}

	for _, param := range ast.Params {
		if _, seen := parsed.Parameters[param.Name]; seen {
			return nil, NewValidationErrorWithContext(param.Name, "a single occurrence", "a duplicate", location, annotationType)
		}

		value, err := p.convertParameterValue(schema, param, annotationType, location)
		if err != nil {
			return nil, err
		}
		if schema != nil {
			if validate := schema.Parameters[param.Name].Validator; validate != nil {
				if err := validate(value); err != nil {
					return nil, NewValidationErrorWithContext(param.Name, "a valid value", fmt.Sprintf("'%v' (%v)", value, err), location, annotationType)
				}
			}
		}
		parsed.Parameters[param.Name] = value
	}

	if schema != nil {
		if err := p.validateAgainstSchema(schema, parsed); err != nil {
			return nil, err
		}
	}

	return parsed, nil
}

// parseAnnotationType converts the kind identifier to a registered AnnotationType
func (p *ParticipleParser) parseAnnotationType(kind string, location SourceLocation) (AnnotationType, error) {
	annotationType, err := ParseAnnotationType(kind)
	if err != nil {
		return annotationType, NewSchemaErrorWithContext(fmt.Sprintf("unknown annotation type '%s'", kind), location, annotationType)
	}

	if p.registry != nil && !p.registry.IsRegistered(annotationType) {
		return annotationType, NewSchemaErrorWithContext(
			fmt.Sprintf("annotation type '%s' is not registered in schema registry", kind), location, annotationType)
	}

	return annotationType, nil
}

// convertParameterValue converts a raw parameter to the type its schema declares
func (p *ParticipleParser) convertParameterValue(schema *AnnotationSchema, param *paramAST, annotationType AnnotationType, location SourceLocation) (interface{}, error) {
	raw, hasValue := "", param.Value != nil
	if hasValue {
		raw = unquote(param.Value.Text)
	}

	if schema == nil {
		if !hasValue {
			return true, nil
		}
		return raw, nil
	}

	spec, exists := schema.Parameters[param.Name]
	if !exists {
		return nil, NewSchemaErrorWithContext(
			fmt.Sprintf("unknown parameter '%s' for annotation type %s", param.Name, annotationType), location, annotationType)
	}

	switch spec.Type {
	case BoolType:
		if !hasValue {
			return true, nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, NewValidationErrorWithContext(param.Name, "true or false", raw, location, annotationType)
		}
		return b, nil
	case StringType:
		if !hasValue {
			if spec.DefaultValue != nil {
				return spec.DefaultValue, nil
			}
			return nil, NewValidationErrorWithContext(param.Name, "a value", "a bare flag", location, annotationType)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// validateAgainstSchema checks that required parameters are present
func (p *ParticipleParser) validateAgainstSchema(schema *AnnotationSchema, annotation *ParsedAnnotation) error {
	for paramName, paramSpec := range schema.Parameters {
		if !paramSpec.Required {
			continue
		}
		if _, exists := annotation.Parameters[paramName]; !exists {
			return NewSchemaErrorWithContext(
				fmt.Sprintf("missing required parameter '%s' for annotation type %s", paramName, annotation.Type),
				annotation.Location, annotation.Type)
		}
	}

	return nil
}

// unquote strips single or double quotes from a parameter value
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1]
	}
	return s
}
