package db

import (
	"context"
	"errors"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// ErrShiftNotFound is returned when updating or deleting an unknown shift
var ErrShiftNotFound = errors.New("shift not found")

// ScheduleSource fetches reference data and shifts. Date bounds are ISO
// yyyy-MM-dd and inclusive.
type ScheduleSource interface {
	FetchLocations(ctx context.Context) ([]model.Location, error)
	FetchPositions(ctx context.Context) ([]model.Position, error)
	FetchUsers(ctx context.Context) ([]model.User, error)
	FetchShifts(ctx context.Context, startDate, endDate string) ([]model.Shift, error)
}

// ShiftWriter persists committed shifts
type ShiftWriter interface {
	InsertShifts(ctx context.Context, shifts []model.Shift) error
	UpdateShift(ctx context.Context, shift model.Shift) error
	DeleteShift(ctx context.Context, id string) error
}

// Database is a full schedule backend.
// The SheetsSQL-backed db.DB, postgres.DB and mockdata.Source implement it.
type Database interface {
	ScheduleSource
	ShiftWriter
}
