// Package permission maps session roles to capabilities and decides whether
// protected regions of the dashboard may render.
package permission

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a named capability.
type Permission string

// The closed set of capabilities.
const (
	ViewTransactions      Permission = "view_transactions"
	ExportTransactions    Permission = "export_transactions"
	DiagnoseTransactions  Permission = "diagnose_transactions"
	ViewAnalytics         Permission = "view_analytics"
	ViewDetailedAnalytics Permission = "view_detailed_analytics"
	ExportReports         Permission = "export_reports"
	ManageUsers           Permission = "manage_users"
	SystemSettings        Permission = "system_settings"
	AuditLogs             Permission = "audit_logs"
	ManageNotifications   Permission = "manage_notifications"
	SendAlerts            Permission = "send_alerts"
)

// All returns every permission in declaration order.
func All() []Permission {
	return []Permission{
		ViewTransactions,
		ExportTransactions,
		DiagnoseTransactions,
		ViewAnalytics,
		ViewDetailedAnalytics,
		ExportReports,
		ManageUsers,
		SystemSettings,
		AuditLogs,
		ManageNotifications,
		SendAlerts,
	}
}

// Parse validates a permission name.
func Parse(name string) (Permission, error) {
	candidate := Permission(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range All() {
		if p == candidate {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission %q", name)
}

// Set is an immutable collection of permissions.
type Set struct {
	members map[Permission]struct{}
}

// NewSet builds a set from perms. Duplicates collapse.
func NewSet(perms ...Permission) Set {
	members := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		members[p] = struct{}{}
	}
	return Set{members: members}
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s.members[p]
	return ok
}

// HasAny reports whether at least one of perms is in the set.
// An empty list is never satisfied.
func (s Set) HasAny(perms []Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of perms is in the set.
// An empty list is always satisfied.
func (s Set) HasAll(perms []Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Union returns a new set holding the members of s and other.
func (s Set) Union(other Set) Set {
	merged := make([]Permission, 0, len(s.members)+len(other.members))
	merged = append(merged, s.List()...)
	merged = append(merged, other.List()...)
	return NewSet(merged...)
}

// Len returns the number of permissions in the set.
func (s Set) Len() int { return len(s.members) }

// List returns the members sorted by name.
func (s Set) List() []Permission {
	out := make([]Permission, 0, len(s.members))
	for p := range s.members {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
