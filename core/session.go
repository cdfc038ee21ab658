package core

import (
	"context"
	"time"
)

// Role is the portal a session is signed into.
type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

	rolePriorities = map[Role]int{
		RoleAdmin:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
	}

	roleNames = map[Role]string{
		RoleAdmin:   "Admin",
		RoleTeacher: "Teacher",
		RoleStudent: "Student",
	}
)

func ParseRole(s string) (Role, bool) {
	r := Role(CleanString(s, true))
	_, ok := rolePriorities[r]
	return r, ok
}

func (r Role) Priority() int { return rolePriorities[r] }
func (r Role) Name() string  { return roleNames[r] }
func (r Role) String() string {
	return string(r)
}

// Session identifies the browser session a request belongs to.
type Session struct {
	ID   string
	Role Role
}

// SessionProvider exposes the role of the current session; the portal never reads the session storage directly.
type SessionProvider interface {
	CurrentRole(ctx context.Context) (Role, bool)
}

type sessionCtxKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// SessionFromContext returns the Session stored in ctx, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(Session)
	return sess, ok
}

// ContextSessions is the SessionProvider reading sessions stored with WithSession.
type ContextSessions struct{}

var _ SessionProvider = ContextSessions{}

func (ContextSessions) CurrentRole(ctx context.Context) (Role, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok || sess.Role == "" {
		return "", false
	}
	return sess.Role, true
}

// RevocationStore remembers signed-out sessions until their cookie would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
