package permission

import (
	"context"
	"fmt"
	"log/slog"
)

// Identity is the raw description of who is using the tool.
type Identity struct {
	Role              string
	CustomPermissions []string
}

// IdentitySource supplies the identity for a session.
type IdentitySource interface {
	Identity(ctx context.Context) (Identity, error)
}

// IdentityFunc adapts a function to IdentitySource.
type IdentityFunc func(ctx context.Context) (Identity, error)

// Identity implements IdentitySource.
func (f IdentityFunc) Identity(ctx context.Context) (Identity, error) {
	return f(ctx)
}

// StaticIdentity returns a source that always yields id.
func StaticIdentity(id Identity) IdentitySource {
	return IdentityFunc(func(context.Context) (Identity, error) { return id, nil })
}

// Session is the resolved permission state. It is fixed once loaded.
type Session struct {
	LoadErr     error
	Role        Role
	permissions Set
	loaded      bool
}

// Pending returns a session whose permissions are still being resolved.
// Every gate denies against it.
func Pending() Session {
	return Session{}
}

// NewSession returns a loaded session with the given role and extra permissions.
func NewSession(role Role, extra ...Permission) Session {
	return Session{
		Role:        role,
		permissions: role.Permissions().Union(NewSet(extra...)),
		loaded:      true,
	}
}

// Fallback returns the minimal session used when loading fails.
func Fallback(cause error) Session {
	return Session{
		LoadErr:     cause,
		permissions: NewSet(ViewTransactions),
		loaded:      true,
	}
}

// Loaded reports whether the permissions have been resolved.
func (s Session) Loaded() bool { return s.loaded }

// Permissions returns the granted set.
func (s Session) Permissions() Set { return s.permissions }

// Has reports whether the session holds p.
func (s Session) Has(p Permission) bool {
	return s.loaded && s.permissions.Has(p)
}

// Load resolves a session from src. It never fails: any error yields the
// fallback session with LoadErr set.
func Load(ctx context.Context, src IdentitySource) Session {
	logger := slog.Default().With("component", "permission")

	session, err := resolve(ctx, src)
	if err != nil {
		logger.Warn("failed to load session permissions, using fallback", "error", err)
		return Fallback(err)
	}
	logger.Debug("session loaded", "role", session.Role, "permissions", session.permissions.Len())
	return session
}

func resolve(ctx context.Context, src IdentitySource) (Session, error) {
	if src == nil {
		return Session{}, fmt.Errorf("no identity source configured")
	}
	id, err := src.Identity(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to read identity: %w", err)
	}

	roleName := id.Role
	if roleName == "" {
		roleName = string(DefaultRole)
	}
	role, err := ParseRole(roleName)
	if err != nil {
		return Session{}, err
	}

	extra := make([]Permission, 0, len(id.CustomPermissions))
	for _, name := range id.CustomPermissions {
		p, err := Parse(name)
		if err != nil {
			return Session{}, err
		}
		extra = append(extra, p)
	}
	return NewSession(role, extra...), nil
}
