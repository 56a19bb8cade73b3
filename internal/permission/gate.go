package permission

// Decision is the outcome of evaluating a gate.
type Decision int

// Gate decisions.
const (
	// Hidden means permissions are still loading and nothing renders.
	Hidden Decision = iota
	// Granted means the protected content renders.
	Granted
	// Denied means the fallback renders instead.
	Denied
)

// RestrictedNotice is shown when a gate denies and no fallback was given.
const RestrictedNotice = "Access Restricted: you don't have permission to view this content."

// Gate guards a region of the interface. Set either Permission or
// Permissions; a gate with neither denies. A non-nil empty Permissions
// list is a set requirement and follows the HasAny/HasAll rules.
type Gate struct {
	Permission  Permission
	Permissions []Permission
	RequireAll  bool
}

// Require returns a gate for a single permission.
func Require(p Permission) Gate {
	return Gate{Permission: p}
}

// RequireAny returns a gate satisfied by any of perms.
func RequireAny(perms ...Permission) Gate {
	return Gate{Permissions: append([]Permission{}, perms...)}
}

// RequireAll returns a gate satisfied only by all of perms.
func RequireAll(perms ...Permission) Gate {
	return Gate{Permissions: append([]Permission{}, perms...), RequireAll: true}
}

// Allows reports whether set satisfies the gate.
func (g Gate) Allows(set Set) bool {
	switch {
	case g.Permission != "":
		return set.Has(g.Permission)
	case g.Permissions != nil:
		if g.RequireAll {
			return set.HasAll(g.Permissions)
		}
		return set.HasAny(g.Permissions)
	default:
		return false
	}
}

// Evaluate decides what the gate shows for session.
func (g Gate) Evaluate(s Session) Decision {
	if !s.Loaded() {
		return Hidden
	}
	if g.Allows(s.Permissions()) {
		return Granted
	}
	return Denied
}

// Render picks between content and fallback for session. An empty fallback
// on denial yields RestrictedNotice; a pending session yields "".
func (g Gate) Render(s Session, content, fallback func() string) string {
	switch g.Evaluate(s) {
	case Granted:
		return content()
	case Denied:
		if fallback != nil {
			return fallback()
		}
		return RestrictedNotice
	default:
		return ""
	}
}
