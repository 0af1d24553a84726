package model

import "context"

const AdministratorGroupName = "administrators"

// User is the authenticated caller as described by the claims of its access token. Users are
// managed by the identity provider and never persisted by this service.
// swagger:model
type User struct {
	ID     uint    `json:"id"`
	Email  string  `json:"email"`
	Groups []Group `json:"groups"`
}

// Group a user is a member of.
type Group struct {
	Name string `json:"name"`
}

func (u *User) IsMemberOf(group string) bool {
	for _, g := range u.Groups {
		if group == g.Name {
			return true
		}
	}
	return false
}

func (u *User) IsAdministrator() bool {
	return u.IsMemberOf(AdministratorGroupName)
}

type ctxKey int

var userKey ctxKey

// NewContextWithUser returns a new [context.Context] that carries the given user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user stored in the ctx, if any.
func GetUserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}
