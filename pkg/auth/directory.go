package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// ErrInvalidCredentials is returned when no account matches a login
var ErrInvalidCredentials = errors.New("invalid email or password")

// Authenticator resolves login details into an identity
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (model.AuthUser, error)
}

// UserLister supplies the roster
type UserLister interface {
	FetchUsers(ctx context.Context) ([]model.User, error)
}

// RosterDirectory identifies users by roster email. Addresses listed as
// admins sign in with the admin role; everyone else on the roster is a tutor.
// Passwords are not checked.
type RosterDirectory struct {
	users  UserLister
	admins []string
}

func NewRosterDirectory(users UserLister, adminEmails []string) *RosterDirectory {
	admins := make([]string, len(adminEmails))
	for i, e := range adminEmails {
		admins[i] = normaliseEmail(e)
	}
	return &RosterDirectory{users: users, admins: admins}
}

func (d *RosterDirectory) Authenticate(ctx context.Context, email, _ string) (model.AuthUser, error) {
	email = normaliseEmail(email)
	if email == "" {
		return model.AuthUser{}, ErrInvalidCredentials
	}

	users, err := d.users.FetchUsers(ctx)
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("failed to fetch users: %w", err)
	}

	role := model.RoleTutor
	if slices.Contains(d.admins, email) {
		role = model.RoleAdmin
	}
	for _, u := range users {
		if normaliseEmail(u.Email) == email {
			return model.AuthUser{ID: u.ID, Name: u.FullName(), Email: u.Email, Role: role}, nil
		}
	}
	if role == model.RoleAdmin {
		return model.AuthUser{ID: email, Name: "Admin", Email: email, Role: role}, nil
	}
	return model.AuthUser{}, ErrInvalidCredentials
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
