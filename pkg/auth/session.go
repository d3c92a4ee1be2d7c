package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/store"
)

// SessionKey is the backend key of the signed-in identity
const SessionKey = "authUser"

// ErrForbidden is returned when the signed-in role may not perform an action
var ErrForbidden = errors.New("not permitted for this role")

// ErrNotSignedIn is returned by Require when nobody is logged in
var ErrNotSignedIn = errors.New("not signed in")

var validate = validator.New()

// Session persists the current identity in a store backend
type Session struct {
	backend store.Backend
	logger  *zap.Logger
}

func NewSession(backend store.Backend, logger *zap.Logger) *Session {
	return &Session{backend: backend, logger: logger}
}

// Login records user as the current identity
func (s *Session) Login(ctx context.Context, user model.AuthUser) error {
	if err := validate.Struct(user); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.backend.Save(ctx, SessionKey, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Info("Signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// Logout clears the current identity
func (s *Session) Logout(ctx context.Context) error {
	if err := s.backend.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in identity, or nil when nobody is signed
// in or the stored identity is unreadable
func (s *Session) CurrentUser(ctx context.Context) (*model.AuthUser, error) {
	data, err := s.backend.Load(ctx, SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var user model.AuthUser
	if err := json.Unmarshal(data, &user); err != nil {
		s.logger.Warn("Ignoring unreadable session", zap.Error(err))
		return nil, nil
	}
	if err := validate.Struct(user); err != nil {
		s.logger.Warn("Ignoring invalid session", zap.Error(err))
		return nil, nil
	}
	return &user, nil
}

// Require returns the signed-in identity or ErrNotSignedIn
func (s *Session) Require(ctx context.Context) (*model.AuthUser, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

// RequireAdmin fails with ErrForbidden unless user is an admin
func RequireAdmin(user *model.AuthUser) error {
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanManage reports whether user may view or edit records owned by ownerID.
// Tutors only manage their own availability and time off.
func CanManage(user *model.AuthUser, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || user.ID == ownerID
}

// RequireOwnerOrAdmin fails with ErrForbidden unless CanManage allows it
func RequireOwnerOrAdmin(user *model.AuthUser, ownerID string) error {
	if !CanManage(user, ownerID) {
		return ErrForbidden
	}
	return nil
}
