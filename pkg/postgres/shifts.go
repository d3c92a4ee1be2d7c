package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/db"
)

const shiftColumns = `id, user_id, location_id, position_id, start_time, end_time, notes, published`

func scanShift(row pgx.CollectableRow) (model.Shift, error) {
	var s model.Shift
	err := row.Scan(&s.ID, &s.UserID, &s.LocationID, &s.PositionID, &s.Start, &s.End, &s.Notes, &s.Published)
	return s, err
}

// FetchShifts returns shifts starting on any day in [startDate, endDate]
func (d *DB) FetchShifts(ctx context.Context, startDate, endDate string) ([]model.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shift
		WHERE start_time >= $1::date AND start_time < $2::date + 1
		ORDER BY start_time, id
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	shifts, err := pgx.CollectRows(rows, scanShift)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shifts: %w", err)
	}
	return shifts, nil
}

// InsertShifts inserts shifts in one transaction
func (d *DB) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range shifts {
		batch.Queue(`INSERT INTO shift (`+shiftColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.UserID, s.LocationID, s.PositionID, s.Start, s.End, s.Notes, s.Published)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert shifts: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit shifts: %w", err)
	}

	d.logger.Debug("Inserted shifts", zap.Int("count", len(shifts)))
	return nil
}

// UpdateShift replaces every column of an existing shift
func (d *DB) UpdateShift(ctx context.Context, s model.Shift) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shift SET user_id = $2, location_id = $3, position_id = $4,
			start_time = $5, end_time = $6, notes = $7, published = $8
		WHERE id = $1
	`, s.ID, s.UserID, s.LocationID, s.PositionID, s.Start, s.End, s.Notes, s.Published)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrShiftNotFound, s.ID)
	}
	return nil
}

// DeleteShift removes a shift
func (d *DB) DeleteShift(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrShiftNotFound, id)
	}
	return nil
}
