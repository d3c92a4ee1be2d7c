package model

import "time"

// Role gates what a signed-in user may do
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTutor Role = "tutor"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleTutor
}

// LocalTimeLayout is the wire format for timezone-naive shift instants
const LocalTimeLayout = "2006-01-02T15:04:05"

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// User represents a tutor or admin on the roster
type User struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Positions   []string // Eligible position ids, in preference order
	Locations   []string // Eligible location ids, first entry is the default
}

// FullName returns "First Last"
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Location represents a tutoring centre site
type Location struct {
	ID      string
	Name    string
	Address string
}

// Position represents a tutoring role
type Position struct {
	ID    string
	Name  string
	Color string
}

// Shift is a scheduled work interval for one tutor at one location/position.
// Start and End are wall-clock instants carried in time.UTC.
type Shift struct {
	ID         string    `json:"id" validate:"required"`
	UserID     string    `json:"user_id" validate:"required"`
	LocationID string    `json:"location_id" validate:"required"`
	PositionID string    `json:"position_id" validate:"required"`
	Start      time.Time `json:"start_time" validate:"required"`
	End        time.Time `json:"end_time" validate:"required,gtfield=Start"`
	Notes      string    `json:"notes,omitempty"`
	Published  bool      `json:"published"`
}

// Duration returns End - Start
func (s Shift) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

type AvailabilityPreference string

const (
	PreferenceAvailable   AvailabilityPreference = "available"
	PreferenceUnavailable AvailabilityPreference = "unavailable"
)

// AvailabilityEvent is a tutor's recurring weekly preference for a time window
type AvailabilityEvent struct {
	ID         string                 `json:"id" validate:"required"`
	UserID     string                 `json:"user_id" validate:"required"`
	DayOfWeek  int                    `json:"day_of_week" validate:"min=1,max=7"` // 1=Monday..7=Sunday
	StartTime  string                 `json:"start_time" validate:"required,datetime=15:04"`
	EndTime    string                 `json:"end_time" validate:"required,datetime=15:04"`
	Preference AvailabilityPreference `json:"preference" validate:"required,oneof=available unavailable"`
	Notes      string                 `json:"notes,omitempty"`
}

type TimeOffType string

const (
	TimeOffUnpaid  TimeOffType = "unpaid"
	TimeOffPaid    TimeOffType = "paid"
	TimeOffSick    TimeOffType = "sick"
	TimeOffHoliday TimeOffType = "holiday"
)

type TimeOffStatus string

const (
	StatusPending  TimeOffStatus = "pending"
	StatusApproved TimeOffStatus = "approved"
	StatusDenied   TimeOffStatus = "denied"
)

// TimeOffRequest is a request to be excused from scheduling for an inclusive date range.
// StartTime and EndTime are only meaningful when AllDay is false.
type TimeOffRequest struct {
	ID        string        `json:"id" validate:"required"`
	UserID    string        `json:"user_id" validate:"required"`
	Type      TimeOffType   `json:"type" validate:"required,oneof=unpaid paid sick holiday"`
	StartDate string        `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string        `json:"end_date" validate:"required,datetime=2006-01-02"`
	AllDay    bool          `json:"all_day"`
	StartTime string        `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime   string        `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Status    TimeOffStatus `json:"status" validate:"required,oneof=pending approved denied"`
	Notes     string        `json:"notes,omitempty"`
}

// AuthUser is the signed-in identity
type AuthUser struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role" validate:"required,oneof=admin tutor"`
}

// IsAdmin reports whether the user holds the admin role
func (a *AuthUser) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// MergedInterval is a tutor's contiguous, same-location shift block for one day.
// Derived on every render pass and never stored.
type MergedInterval struct {
	Start       time.Time
	End         time.Time
	Shifts      []Shift
	LocationID  string
	PositionIDs []string // Distinct position ids in first-seen order
}

// HasMultiplePositions reports whether the backing shifts span more than one position
func (m MergedInterval) HasMultiplePositions() bool {
	return len(m.PositionIDs) > 1
}

// EditableShiftID returns the id of the single backing shift, or "" when the
// interval merges several shifts and cannot be resized as a whole
func (m MergedInterval) EditableShiftID() string {
	if len(m.Shifts) != 1 {
		return ""
	}
	return m.Shifts[0].ID
}
