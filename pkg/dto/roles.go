package dto

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Role is a single usage intent of a DTO member
type Role uint8

const (
	None   Role = 0
	Create Role = 1 << (iota - 1)
	Read
	Update
	Delete
)

// allRoles lists the defined roles in canonical order
var allRoles = []Role{Create, Read, Update, Delete}

// String returns the name of the role as written in annotations and tags
func (r Role) String() string {
	switch r {
	case None:
		return "None"
	case Create:
		return "Create"
	case Read:
		return "Read"
	case Update:
		return "Update"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// RoleSet is an immutable set of roles. The zero value holds no role.
type RoleSet uint8

// roleMask covers every defined role bit
const roleMask = RoleSet(Create | Read | Update | Delete)

// DefaultRoles returns the set holding all four roles
func DefaultRoles() RoleSet {
	return roleMask
}

// RolesOf builds a set from individual roles
func RolesOf(roles ...Role) RoleSet {
	var set RoleSet
	for _, r := range roles {
		set |= RoleSet(r)
	}
	return set
}

// Combine returns the union of two role sets
func Combine(a, b RoleSet) RoleSet {
	return a | b
}

// Contains reports whether the set holds the role
func Contains(set RoleSet, r Role) bool {
	if r == None {
		return false
	}
	return set&RoleSet(r) == RoleSet(r)
}

// Contains reports whether the set holds the role
func (s RoleSet) Contains(r Role) bool {
	return Contains(s, r)
}

// IsEmpty reports whether the set holds no role
func (s RoleSet) IsEmpty() bool {
	return s == 0
}

// Valid reports whether the set only uses defined role bits
func (s RoleSet) Valid() bool {
	return s&^roleMask == 0
}

// Roles returns the roles held by the set in canonical order
func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, len(allRoles))
	for _, r := range allRoles {
		if s.Contains(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// String renders the set as a comma separated list, the form used in struct tags
func (s RoleSet) String() string {
	if s.IsEmpty() {
		return None.String()
	}
	names := make([]string, 0, len(allRoles))
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}

// ParseRoles parses a role list such as "Create,Read", "Create|Read", "all",
// "none" or a numeric mask like "7"
func ParseRoles(s string) (RoleSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty role list")
	}

	if s[0] >= '0' && s[0] <= '9' {
		return parseRoleMask(s)
	}

	var set RoleSet
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "create":
			set |= RoleSet(Create)
		case "read":
			set |= RoleSet(Read)
		case "update":
			set |= RoleSet(Update)
		case "delete":
			set |= RoleSet(Delete)
		case "all":
			set |= roleMask
		case "none":
		default:
			return 0, fmt.Errorf("unknown role '%s', expected one of Create, Read, Update, Delete", part)
		}
	}
	return set, nil
}

// parseRoleMask converts a numeric mask, rejecting values with undefined bits
func parseRoleMask(s string) (RoleSet, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid role mask '%s': %w", s, err)
	}
	b, err := safecast.Conv[uint8](n)
	if err != nil {
		return 0, fmt.Errorf("role mask %s out of range: %w", s, err)
	}
	set := RoleSet(b)
	if !set.Valid() {
		return 0, fmt.Errorf("role mask %s sets undefined role bits", s)
	}
	return set, nil
}
