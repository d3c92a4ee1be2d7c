package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// DraftKey is the backend key of locally created, uncommitted shifts
const DraftKey = "draftShifts"

// DraftStore holds draft shifts until they are published
type DraftStore struct {
	*Store[model.Shift]
}

func NewDraftStore(backend Backend, logger *zap.Logger) *DraftStore {
	return &DraftStore{
		Store: New(DraftKey, backend, Codec[model.Shift]{
			ID: func(s model.Shift) string { return s.ID },
		}, logger),
	}
}

// Contains reports whether id is a draft
func (s *DraftStore) Contains(ctx context.Context, id string) (bool, error) {
	drafts, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range drafts {
		if d.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Clear removes every draft
func (s *DraftStore) Clear(ctx context.Context) error {
	return s.Replace(ctx, []model.Shift{})
}
