package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// DragPayload is carried from an availability chip to a day column
type DragPayload struct {
	UserID    string `json:"user_id" validate:"required"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

var validate = validator.New()

// PendingDrop is a drop waiting for location confirmation
type PendingDrop struct {
	Payload DragPayload
	Day     time.Time
}

// EncodeDragPayload serialises the payload of an availability chip
func EncodeDragPayload(event model.AvailabilityEvent) (string, error) {
	data, err := json.Marshal(DragPayload{
		UserID:    event.UserID,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode drag payload: %w", err)
	}
	return string(data), nil
}

// ParseDragPayload decodes a payload, accepting whole numeric user ids.
// Both times must be present as "HH:MM".
func ParseDragPayload(raw string) (DragPayload, error) {
	var decoded struct {
		UserID    any    `json:"user_id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return DragPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var userID string
	switch id := decoded.UserID.(type) {
	case string:
		userID = strings.TrimSpace(id)
	case float64:
		if id <= 0 || id != math.Trunc(id) {
			return DragPayload{}, fmt.Errorf("%w: user_id %v is not a whole positive number", ErrMalformedPayload, id)
		}
		userID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	if userID == "0" {
		userID = ""
	}

	payload := DragPayload{UserID: userID, StartTime: decoded.StartTime, EndTime: decoded.EndTime}
	if err := validate.Struct(payload); err != nil {
		return DragPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return payload, nil
}

// BeginDrop handles a drop on day and opens the location confirmation.
// Malformed payloads are ignored and leave the editor unchanged.
func (c *Controller) BeginDrop(raw string, day time.Time) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if c.busy() {
		return ErrGestureActive
	}
	if len(c.ref.Users) == 0 {
		return ErrUnknownUser
	}

	payload, err := ParseDragPayload(raw)
	if err != nil {
		c.logger.Debug("Ignoring drop", zap.Error(err))
		return err
	}

	c.drop = &PendingDrop{Payload: payload, Day: timeutil.StartOfDay(day)}
	return nil
}

// PendingDrop returns the drop awaiting confirmation
func (c *Controller) PendingDrop() (PendingDrop, bool) {
	if c.drop == nil {
		return PendingDrop{}, false
	}
	return *c.drop, true
}

// ConfirmDrop creates the dropped shift at the chosen location. An end at or
// before the start is pushed to one hour after it. Both success and conflict
// close the confirmation.
func (c *Controller) ConfirmDrop(ctx context.Context, location mo.Option[string]) (model.Shift, error) {
	if c.drop == nil {
		return model.Shift{}, ErrNoGesture
	}
	drop := *c.drop

	user, ok := c.ref.user(drop.Payload.UserID)
	if !ok {
		return model.Shift{}, ErrUnknownUser
	}

	start := timeutil.ParseTimeForDay(drop.Day, drop.Payload.StartTime)
	end := timeutil.ParseTimeForDay(drop.Day, drop.Payload.EndTime)
	if !end.After(start) {
		end = start.Add(time.Hour)
	}

	shift, err := c.createDraft(ctx, user, location, start, end, AvailabilityNote)
	c.drop = nil
	return shift, err
}

// CancelDrop discards the pending drop
func (c *Controller) CancelDrop() {
	c.drop = nil
}
