package db

import (
	"fmt"
	"time"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// Location is the location table row
type Location struct {
	ID      string `ssql_header:"id" ssql_type:"text"`
	Name    string `ssql_header:"name" ssql_type:"text"`
	Address string `ssql_header:"address" ssql_type:"text"`
}

// Position is the position table row
type Position struct {
	ID    string `ssql_header:"id" ssql_type:"text"`
	Name  string `ssql_header:"name" ssql_type:"text"`
	Color string `ssql_header:"color" ssql_type:"text"`
}

// User is the user table row
type User struct {
	ID          string   `ssql_header:"id" ssql_type:"text"`
	FirstName   string   `ssql_header:"first_name" ssql_type:"text"`
	LastName    string   `ssql_header:"last_name" ssql_type:"text"`
	Email       string   `ssql_header:"email" ssql_type:"text"`
	PhoneNumber string   `ssql_header:"phone_number" ssql_type:"text"`
	Positions   []string `ssql_header:"positions" ssql_type:"list"`
	Locations   []string `ssql_header:"locations" ssql_type:"list"`
}

// ShiftRevision is one append-only write of a shift. The last row for an id
// is its current state; a Deleted row removes it.
type ShiftRevision struct {
	ID         string `ssql_header:"id" ssql_type:"text"`
	UserID     string `ssql_header:"user_id" ssql_type:"text"`
	LocationID string `ssql_header:"location_id" ssql_type:"text"`
	PositionID string `ssql_header:"position_id" ssql_type:"text"`
	StartTime  string `ssql_header:"start_time" ssql_type:"datetime"`
	EndTime    string `ssql_header:"end_time" ssql_type:"datetime"`
	Notes      string `ssql_header:"notes" ssql_type:"text"`
	Published  bool   `ssql_header:"published" ssql_type:"bool"`
	Deleted    bool   `ssql_header:"deleted" ssql_type:"bool"`
	RecordedAt string `ssql_header:"recorded_at" ssql_type:"datetime"`
}

// Models lists every table model for sheetssql.SchemaFromModels
func Models() []interface{} {
	return []interface{}{Location{}, Position{}, User{}, ShiftRevision{}}
}

func (l Location) toModel() model.Location {
	return model.Location{ID: l.ID, Name: l.Name, Address: l.Address}
}

func (p Position) toModel() model.Position {
	return model.Position{ID: p.ID, Name: p.Name, Color: p.Color}
}

func (u User) toModel() model.User {
	return model.User{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Positions:   u.Positions,
		Locations:   u.Locations,
	}
}

func revisionFromShift(s model.Shift, deleted bool, recordedAt time.Time) ShiftRevision {
	return ShiftRevision{
		ID:         s.ID,
		UserID:     s.UserID,
		LocationID: s.LocationID,
		PositionID: s.PositionID,
		StartTime:  s.Start.Format(model.LocalTimeLayout),
		EndTime:    s.End.Format(model.LocalTimeLayout),
		Notes:      s.Notes,
		Published:  s.Published,
		Deleted:    deleted,
		RecordedAt: recordedAt.UTC().Format(model.LocalTimeLayout),
	}
}

func (r ShiftRevision) toModel() (model.Shift, error) {
	start, err := time.Parse(model.LocalTimeLayout, r.StartTime)
	if err != nil {
		return model.Shift{}, fmt.Errorf("invalid start_time %q: %w", r.StartTime, err)
	}
	end, err := time.Parse(model.LocalTimeLayout, r.EndTime)
	if err != nil {
		return model.Shift{}, fmt.Errorf("invalid end_time %q: %w", r.EndTime, err)
	}
	return model.Shift{
		ID:         r.ID,
		UserID:     r.UserID,
		LocationID: r.LocationID,
		PositionID: r.PositionID,
		Start:      start,
		End:        end,
		Notes:      r.Notes,
		Published:  r.Published,
	}, nil
}

// latestRevisions keeps the last revision per id in first-seen order and
// drops ids whose last revision is a tombstone
func latestRevisions(revisions []ShiftRevision) []ShiftRevision {
	latest := make(map[string]ShiftRevision, len(revisions))
	order := make([]string, 0, len(revisions))
	for _, r := range revisions {
		if r.ID == "" {
			continue
		}
		if _, seen := latest[r.ID]; !seen {
			order = append(order, r.ID)
		}
		latest[r.ID] = r
	}

	result := make([]ShiftRevision, 0, len(order))
	for _, id := range order {
		if r := latest[id]; !r.Deleted {
			result = append(result, r)
		}
	}
	return result
}
