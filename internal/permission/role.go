package permission

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/common"
)

// Role is one of the fixed session roles.
type Role string

// Known roles.
const (
	Viewer   Role = "viewer"
	Analyst  Role = "analyst"
	Operator Role = "operator"
	Admin    Role = "admin"
)

// DefaultRole is used when no role is configured.
const DefaultRole = Analyst

var roleTable = map[Role][]Permission{
	Viewer: {
		ViewTransactions,
		ViewAnalytics,
	},
	Analyst: {
		ViewTransactions,
		ExportTransactions,
		DiagnoseTransactions,
		ViewAnalytics,
		ViewDetailedAnalytics,
		ExportReports,
	},
	Operator: {
		ViewTransactions,
		ExportTransactions,
		DiagnoseTransactions,
		ViewAnalytics,
		ViewDetailedAnalytics,
		ExportReports,
		ManageNotifications,
		SendAlerts,
	},
	Admin: All(),
}

// Roles returns the roles from least to most privileged.
func Roles() []Role {
	return []Role{Viewer, Analyst, Operator, Admin}
}

// ParseRole validates a role name, ignoring case.
func ParseRole(name string) (Role, error) {
	candidate := Role(strings.ToLower(strings.TrimSpace(name)))
	if candidate == "administrator" {
		candidate = Admin
	}
	if _, ok := roleTable[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownRole, name)
	}
	return candidate, nil
}

// Permissions returns the permissions granted to the role.
func (r Role) Permissions() Set {
	return NewSet(roleTable[r]...)
}

// DisplayName returns the title used in the header.
func (r Role) DisplayName() string {
	switch r {
	case Viewer:
		return "Viewer"
	case Analyst:
		return "Analyst"
	case Operator:
		return "Operator"
	case Admin:
		return "Administrator"
	default:
		return string(r)
	}
}
