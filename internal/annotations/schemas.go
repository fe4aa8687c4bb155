package annotations

import "fmt"

// Built-in annotation schemas

// SourceAnnotationSchema defines the schema for //dto::source annotations
var SourceAnnotationSchema = AnnotationSchema{
	Type:        SourceAnnotation,
	Description: "Marks a struct as the source of a generated DTO type",
	Parameters: map[string]ParameterSpec{
		"Name": NameParameterSpec("Name of the generated DTO type. Defaults to <Struct>DTO"),
	},
	Examples: []string{
		"//dto::source",
		"//dto::source -Name=CustomerView",
	},
}

// MemberAnnotationSchema defines the schema for //dto::member annotations
var MemberAnnotationSchema = AnnotationSchema{
	Type:        MemberAnnotation,
	Description: "Includes a struct field in the generated DTO type",
	Parameters: map[string]ParameterSpec{
		"Roles":    RolesParameterSpec(),
		"Name":     NameParameterSpec("Name of the generated member. Defaults to the field name"),
		"Nullable": NullableParameterSpec(),
	},
	Examples: []string{
		"//dto::member",
		"//dto::member -Roles=Read",
		"//dto::member -Roles=Create,Read,Update",
		"//dto::member -Roles=Create|Read -Name=DisplayName",
		"//dto::member -Nullable",
	},
}

// ObservableAnnotationSchema defines the schema for //dto::observable annotations.
// Observable types get their own notification machinery and cannot be DTO sources.
var ObservableAnnotationSchema = AnnotationSchema{
	Type:        ObservableAnnotation,
	Description: "Marks a struct as observable; its change notification is generated separately",
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//dto::observable"},
}

// NotifyAnnotationSchema defines the schema for //dto::notify annotations
var NotifyAnnotationSchema = AnnotationSchema{
	Type:        NotifyAnnotation,
	Description: "Marks a struct as raising property change notifications on its own",
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//dto::notify"},
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}

	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		SourceAnnotationSchema,
		MemberAnnotationSchema,
		ObservableAnnotationSchema,
		NotifyAnnotationSchema,
	}
}
