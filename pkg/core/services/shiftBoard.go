package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/editor"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/db"
	"github.com/jakechorley/swiftshift/pkg/store"
)

// ShiftBoard is the shift collection the editor mutates for one week.
// New shifts land in the draft store; edits to committed shifts go straight
// to the database.
type ShiftBoard struct {
	database   db.Database
	drafts     *store.DraftStore
	start, end string
	logger     *zap.Logger
}

var _ editor.ShiftCollection = (*ShiftBoard)(nil)

func NewShiftBoard(database db.Database, drafts *store.DraftStore, anchor time.Time, logger *zap.Logger) *ShiftBoard {
	start, end := WeekRange(anchor)
	return &ShiftBoard{database: database, drafts: drafts, start: start, end: end, logger: logger}
}

// All returns the week's committed shifts followed by every draft
func (b *ShiftBoard) All(ctx context.Context) ([]model.Shift, error) {
	committed, err := b.database.FetchShifts(ctx, b.start, b.end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	drafts, err := b.drafts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return slices.Concat(committed, drafts), nil
}

func (b *ShiftBoard) AddDraft(ctx context.Context, shift model.Shift) error {
	return b.drafts.Add(ctx, shift)
}

func (b *ShiftBoard) Replace(ctx context.Context, shift model.Shift) error {
	isDraft, err := b.drafts.Contains(ctx, shift.ID)
	if err != nil {
		return err
	}
	if isDraft {
		return b.drafts.Update(ctx, shift)
	}
	b.logger.Debug("Updating committed shift", zap.String("shift_id", shift.ID))
	return b.database.UpdateShift(ctx, shift)
}

func (b *ShiftBoard) Remove(ctx context.Context, id string) error {
	isDraft, err := b.drafts.Contains(ctx, id)
	if err != nil {
		return err
	}
	if isDraft {
		return b.drafts.Remove(ctx, id)
	}
	b.logger.Debug("Deleting committed shift", zap.String("shift_id", id))
	return b.database.DeleteShift(ctx, id)
}
