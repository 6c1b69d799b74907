// Package security provides the per-request session and role-based permissions.
package security

import (
	"context"
	"fmt"

	"maintledger/internal/core/apperror"
)

// Permission names an action guarded by role.
type Permission string

const (
	PermStockRead     Permission = "stock:read"
	PermStockWrite    Permission = "stock:write"
	PermStockConsume  Permission = "stock:consume"
	PermCostRead      Permission = "cost:read"
	PermWorktimeRead  Permission = "worktime:read"
	PermWorktimeWrite Permission = "worktime:write"
)

// Role is the coarse user role carried by the access token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

type permissionSet map[Permission]struct{}

func setOf(perms ...Permission) permissionSet {
	s := make(permissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// rolePermissions is read-only after package init.
var rolePermissions = map[Role]permissionSet{
	RoleAdmin: setOf(PermStockRead, PermStockWrite, PermStockConsume,
		PermCostRead, PermWorktimeRead, PermWorktimeWrite),
	RoleManager: setOf(PermStockRead, PermStockWrite, PermStockConsume,
		PermCostRead, PermWorktimeRead),
	RoleTechnician: setOf(PermStockRead, PermStockConsume, PermWorktimeRead, PermWorktimeWrite),
	RoleViewer:     setOf(PermStockRead, PermCostRead, PermWorktimeRead),
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := rolePermissions[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Session is constructed once per request from the access token and threaded
// through calls via context. It replaces any ambient user/permission state.
type Session struct {
	ActorID string
	Name    string
	Role    Role
}

// NewSession creates a session for an authenticated actor.
func NewSession(actorID, name string, role Role) *Session {
	return &Session{ActorID: actorID, Name: name, Role: role}
}

// Can reports whether the session's role grants perm.
func (s *Session) Can(perm Permission) bool {
	if s == nil {
		return false
	}
	_, ok := rolePermissions[s.Role][perm]
	return ok
}

// Require returns a Forbidden error if perm is missing.
func (s *Session) Require(perm Permission) error {
	if s == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if !s.Can(perm) {
		return apperror.NewForbidden(fmt.Sprintf("permission %s required", perm)).
			WithDetail("role", string(s.Role)).
			WithDetail("permission", string(perm))
	}
	return nil
}

type sessionKey struct{}

// WithSession adds Session to context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the Session from context, or nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return s
	}
	return nil
}

// ActorID returns the acting user id from context or empty string.
func ActorID(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.ActorID
	}
	return ""
}
