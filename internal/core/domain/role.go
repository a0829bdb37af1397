package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the canonical permission level of a console user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// ResolveRole normalizes the backend's role representation into a Role.
// The backend sends either a flat tag ("admin") or an embedded record
// ({"name": "admin"}); every other shape maps to RoleEmployee.
func ResolveRole(raw any) Role {
	switch v := raw.(type) {
	case string:
		return Role(v)
	case Role:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok && name != "" {
			return Role(name)
		}
	case map[string]string:
		if name := v["name"]; name != "" {
			return Role(name)
		}
	}
	return RoleEmployee
}

// UnmarshalJSON accepts any JSON value and resolves it with ResolveRole.
// It never fails on shape, only on malformed JSON.
func (r *Role) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = ResolveRole(raw)
	return nil
}

// ParseRole validates operator input such as a CLI flag.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q: must be one of admin, manager, employee", s)
	}
	return r, nil
}

// Valid reports whether r is one of the canonical tags.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// CanViewDirectory reports whether the role may list other users.
func (r Role) CanViewDirectory() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanEditDirectory reports whether the role may create, update or delete users.
func (r Role) CanEditDirectory() bool {
	return r == RoleAdmin
}

// Description is the one-line summary shown on the dashboard.
func (r Role) Description() string {
	switch r {
	case RoleAdmin:
		return "Full system access with user management capabilities"
	case RoleManager:
		return "View and manage employee information"
	default:
		return "Access to personal profile and assigned tasks"
	}
}

// Permissions lists what the role is allowed to do, for display.
func (r Role) Permissions() []string {
	switch r {
	case RoleAdmin:
		return []string{
			"Create new users",
			"Edit all user profiles",
			"Delete users",
			"Manage system settings",
			"View all reports",
		}
	case RoleManager:
		return []string{
			"View employee profiles",
			"Generate team reports",
			"Assign tasks",
			"View team analytics",
		}
	default:
		return []string{
			"View personal profile",
			"Update personal information",
			"View assigned tasks",
			"Submit time reports",
		}
	}
}
