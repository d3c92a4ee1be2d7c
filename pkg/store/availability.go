package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// AvailabilityKey is the backend key of the availability collection
const AvailabilityKey = "availabilityEvents"

// AvailabilityStore holds recurring weekly availability events
type AvailabilityStore struct {
	*Store[model.AvailabilityEvent]
}

func NewAvailabilityStore(backend Backend, logger *zap.Logger) *AvailabilityStore {
	return &AvailabilityStore{
		Store: New(AvailabilityKey, backend, Codec[model.AvailabilityEvent]{
			ID:     func(e model.AvailabilityEvent) string { return e.ID },
			Decode: decodeAvailability,
		}, logger),
	}
}

// Create assigns an id when missing and adds the event
func (s *AvailabilityStore) Create(ctx context.Context, event model.AvailabilityEvent) (model.AvailabilityEvent, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := s.Add(ctx, event); err != nil {
		return model.AvailabilityEvent{}, fmt.Errorf("failed to add availability: %w", err)
	}
	return event, nil
}

// ForUser lists the events owned by userID
func (s *AvailabilityStore) ForUser(ctx context.Context, userID string) ([]model.AvailabilityEvent, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.AvailabilityEvent
	for _, e := range events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// storedAvailability is the loose shape accepted from storage. Older
// documents carry numeric ids, string weekdays or a dated availability_date.
type storedAvailability struct {
	ID               any    `json:"id"`
	UserID           any    `json:"user_id"`
	DayOfWeek        any    `json:"day_of_week"`
	AvailabilityDate string `json:"availability_date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Preference       string `json:"preference"`
	Notes            string `json:"notes"`
}

func decodeAvailability(raw json.RawMessage) (model.AvailabilityEvent, bool) {
	var stored storedAvailability
	if err := json.Unmarshal(raw, &stored); err != nil {
		return model.AvailabilityEvent{}, false
	}

	day := weekdayValue(stored.DayOfWeek)
	if day == 0 && stored.AvailabilityDate != "" {
		if date, err := parseLooseDate(stored.AvailabilityDate); err == nil {
			day = timeutil.ISOWeekday(date)
		}
	}
	if day < 1 || day > 7 {
		return model.AvailabilityEvent{}, false
	}

	userID := idValue(stored.UserID)
	if userID == "" || stored.StartTime == "" || stored.EndTime == "" || stored.Preference == "" {
		return model.AvailabilityEvent{}, false
	}

	id := idValue(stored.ID)
	if id == "" {
		// Stable across reads so updates and removals can still find it
		id = uuid.NewSHA1(uuid.NameSpaceOID, raw).String()
	}

	event := model.AvailabilityEvent{
		ID:         id,
		UserID:     userID,
		DayOfWeek:  day,
		StartTime:  stored.StartTime,
		EndTime:    stored.EndTime,
		Preference: model.AvailabilityPreference(stored.Preference),
		Notes:      stored.Notes,
	}
	if err := validate.Struct(event); err != nil {
		return model.AvailabilityEvent{}, false
	}
	return event, true
}

// weekdayValue accepts numbers and numeric strings; anything else is 0
func weekdayValue(v any) int {
	switch day := v.(type) {
	case float64:
		if day != float64(int(day)) {
			return 0
		}
		return int(day)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(day))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func idValue(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

func parseLooseDate(s string) (time.Time, error) {
	for _, layout := range []string{model.DateLayout, model.LocalTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
