package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

type staticUsers []model.User

func (s staticUsers) FetchUsers(context.Context) ([]model.User, error) {
	return s, nil
}

func TestRosterDirectory_Authenticate(t *testing.T) {
	users := staticUsers{
		{ID: "1", FirstName: "Sarah", LastName: "Johnson", Email: "sarah@tutorcenter.com"},
		{ID: "2", FirstName: "Mike", LastName: "Chen", Email: "mike@tutorcenter.com"},
	}
	dir := NewRosterDirectory(users, []string{"Mike@TutorCenter.com", "office@tutorcenter.com"})
	ctx := context.Background()

	t.Run("roster tutor", func(t *testing.T) {
		user, err := dir.Authenticate(ctx, " sarah@tutorcenter.com ", "")
		require.NoError(t, err)
		assert.Equal(t, model.AuthUser{ID: "1", Name: "Sarah Johnson", Email: "sarah@tutorcenter.com", Role: model.RoleTutor}, user)
	})

	t.Run("roster admin", func(t *testing.T) {
		user, err := dir.Authenticate(ctx, "mike@tutorcenter.com", "")
		require.NoError(t, err)
		assert.Equal(t, "2", user.ID)
		assert.Equal(t, model.RoleAdmin, user.Role)
	})

	t.Run("admin outside roster", func(t *testing.T) {
		user, err := dir.Authenticate(ctx, "office@tutorcenter.com", "")
		require.NoError(t, err)
		assert.Equal(t, "office@tutorcenter.com", user.ID)
		assert.True(t, user.IsAdmin())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "nobody@example.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("blank", func(t *testing.T) {
		_, err := dir.Authenticate(ctx, "  ", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
