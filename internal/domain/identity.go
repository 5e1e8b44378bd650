package domain

import "context"

// Role represents a caller's access level
type Role string

const (
	// RoleAdmin may call the ledger primitives and run sweeps
	RoleAdmin Role = "admin"

	// RoleMember trades on their own account only
	RoleMember Role = "member"
)

var validRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanAdminister checks if the role can move currency directly
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// Principal is the authenticated caller supplied by the identity provider.
type Principal struct {
	AccountID string
	Role      Role
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.AccountID != ""
}
