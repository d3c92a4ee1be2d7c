package mockdata

import (
	"context"
	"strings"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// Demo credentials
const (
	AdminEmail    = "admin@swiftshift.com"
	AdminPassword = "admin123"
	TutorPassword = "tutor123"
)

// Accounts signs in the demo admin and any roster tutor
type Accounts struct{}

var _ auth.Authenticator = Accounts{}

func (Accounts) Authenticate(_ context.Context, email, password string) (model.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == AdminEmail && password == AdminPassword {
		return model.AuthUser{ID: "0", Name: "Admin", Email: AdminEmail, Role: model.RoleAdmin}, nil
	}
	if password != TutorPassword {
		return model.AuthUser{}, auth.ErrInvalidCredentials
	}
	for _, u := range Users {
		if u.Email == email {
			return model.AuthUser{ID: u.ID, Name: u.FullName(), Email: u.Email, Role: model.RoleTutor}, nil
		}
	}
	return model.AuthUser{}, auth.ErrInvalidCredentials
}
