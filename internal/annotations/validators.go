package annotations

import (
	"fmt"
	"go/token"

	"github.com/toyz/dtogen/pkg/dto"
)

// ValidateIdentifier validates that a value can be used as a Go identifier
func ValidateIdentifier(v interface{}) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	if !token.IsIdentifier(name) {
		return fmt.Errorf("'%s' is not a valid Go identifier", name)
	}
	return nil
}

// ValidateRoles validates a role list such as Create,Read
func ValidateRoles(v interface{}) error {
	roles, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	_, err := dto.ParseRoles(roles)
	return err
}

// NameParameterSpec returns a Name parameter specification
func NameParameterSpec(description string) ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    false,
		Description: description,
		Validator:   ValidateIdentifier,
	}
}

// RolesParameterSpec returns the Roles parameter specification
func RolesParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:        StringType,
		Required:    false,
		Description: "Roles of the member: any of Create, Read, Update, Delete joined by ',' or '|', 'all', 'none' or a numeric mask. Defaults to all roles",
		Validator:   ValidateRoles,
	}
}

// NullableParameterSpec returns the Nullable flag specification
func NullableParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:         BoolType,
		Required:     false,
		DefaultValue: false,
		Description:  "Marks the member as intentionally nil-able; no not-nil contract is attached to its setter",
	}
}
