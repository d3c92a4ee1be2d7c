package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
	"github.com/jakechorley/swiftshift/pkg/sheetssql"
)

// RosterReader reads tutors from a hand-maintained roster sheet
type RosterReader interface {
	ListRoster(spreadsheetID, tab string) ([]model.User, error)
}

// DB is the SheetsSQL-backed schedule database. Reference data lives in
// plain tables; shifts are an append-only revision log.
type DB struct {
	ssql   *sheetssql.DB
	logger *zap.Logger
	now    func() time.Time

	roster        RosterReader
	rosterSheetID string
	rosterTab     string
}

// Option configures a DB
type Option func(*DB)

// WithRoster reads users from a roster tab instead of the user table
func WithRoster(reader RosterReader, spreadsheetID, tab string) Option {
	return func(db *DB) {
		db.roster = reader
		db.rosterSheetID = spreadsheetID
		db.rosterTab = tab
	}
}

// WithClock overrides the revision timestamp source
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// NewDB wraps an opened SheetsSQL database
func NewDB(ssql *sheetssql.DB, logger *zap.Logger, opts ...Option) *DB {
	db := &DB{ssql: ssql, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// FetchLocations returns every location
func (db *DB) FetchLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := sheetssql.GetTableAs[Location](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}
	locations := make([]model.Location, 0, len(rows))
	for _, r := range rows {
		if r.ID != "" {
			locations = append(locations, r.toModel())
		}
	}
	return locations, nil
}

// FetchPositions returns every position
func (db *DB) FetchPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := sheetssql.GetTableAs[Position](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	positions := make([]model.Position, 0, len(rows))
	for _, r := range rows {
		if r.ID != "" {
			positions = append(positions, r.toModel())
		}
	}
	return positions, nil
}

// FetchUsers returns the roster sheet when configured, otherwise the user table
func (db *DB) FetchUsers(ctx context.Context) ([]model.User, error) {
	if db.roster != nil {
		users, err := db.roster.ListRoster(db.rosterSheetID, db.rosterTab)
		if err != nil {
			return nil, fmt.Errorf("failed to get roster: %w", err)
		}
		return users, nil
	}

	rows, err := sheetssql.GetTableAs[User](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	users := make([]model.User, 0, len(rows))
	for _, r := range rows {
		if r.ID != "" {
			users = append(users, r.toModel())
		}
	}
	return users, nil
}

// FetchShifts returns current shifts starting within [startDate, endDate],
// ordered by start. Revisions with unreadable times are skipped.
func (db *DB) FetchShifts(ctx context.Context, startDate, endDate string) ([]model.Shift, error) {
	current, err := db.currentShifts()
	if err != nil {
		return nil, err
	}

	shifts := make([]model.Shift, 0, len(current))
	for _, s := range current {
		if timeutil.IsDateWithinRange(timeutil.DateKey(s.Start), startDate, endDate) {
			shifts = append(shifts, s)
		}
	}
	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].Start.Before(shifts[j].Start) })
	return shifts, nil
}

func (db *DB) currentShifts() ([]model.Shift, error) {
	revisions, err := sheetssql.GetTableAs[ShiftRevision](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift revisions: %w", err)
	}

	latest := latestRevisions(revisions)
	shifts := make([]model.Shift, 0, len(latest))
	for _, r := range latest {
		shift, err := r.toModel()
		if err != nil {
			db.logger.Debug("Skipping unreadable shift revision", zap.String("shift_id", r.ID), zap.Error(err))
			continue
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

func (db *DB) findShift(id string) (model.Shift, error) {
	shifts, err := db.currentShifts()
	if err != nil {
		return model.Shift{}, err
	}
	for _, s := range shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Shift{}, fmt.Errorf("%w: %s", ErrShiftNotFound, id)
}

// InsertShifts appends a first revision for each shift
func (db *DB) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	now := db.now()
	revisions := make([]ShiftRevision, 0, len(shifts))
	for _, s := range shifts {
		revisions = append(revisions, revisionFromShift(s, false, now))
	}
	if err := sheetssql.InsertModels(db.ssql, revisions); err != nil {
		return fmt.Errorf("failed to insert shifts: %w", err)
	}
	return nil
}

// UpdateShift appends a revision replacing the shift
func (db *DB) UpdateShift(ctx context.Context, shift model.Shift) error {
	if _, err := db.findShift(shift.ID); err != nil {
		return err
	}
	if err := sheetssql.InsertModel(db.ssql, revisionFromShift(shift, false, db.now())); err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return nil
}

// DeleteShift appends a tombstone revision
func (db *DB) DeleteShift(ctx context.Context, id string) error {
	shift, err := db.findShift(id)
	if err != nil {
		return err
	}
	if err := sheetssql.InsertModel(db.ssql, revisionFromShift(shift, true, db.now())); err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

// SeedReference appends reference rows, used to initialise a new spreadsheet
func (db *DB) SeedReference(ctx context.Context, locations []model.Location, positions []model.Position, users []model.User) error {
	locRows := make([]Location, 0, len(locations))
	for _, l := range locations {
		locRows = append(locRows, Location{ID: l.ID, Name: l.Name, Address: l.Address})
	}
	posRows := make([]Position, 0, len(positions))
	for _, p := range positions {
		posRows = append(posRows, Position{ID: p.ID, Name: p.Name, Color: p.Color})
	}
	userRows := make([]User, 0, len(users))
	for _, u := range users {
		userRows = append(userRows, User{
			ID:          u.ID,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			Positions:   u.Positions,
			Locations:   u.Locations,
		})
	}

	if err := sheetssql.InsertModels(db.ssql, locRows); err != nil {
		return fmt.Errorf("failed to seed locations: %w", err)
	}
	if err := sheetssql.InsertModels(db.ssql, posRows); err != nil {
		return fmt.Errorf("failed to seed positions: %w", err)
	}
	if err := sheetssql.InsertModels(db.ssql, userRows); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}
