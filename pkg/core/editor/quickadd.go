package editor

import (
	"context"
	"time"

	"github.com/samber/mo"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

const (
	defaultQuickAddStart = "14:00"
	defaultQuickAddEnd   = "16:00"
)

// QuickAddForm captures a manual shift creation
type QuickAddForm struct {
	UserID    string
	Day       time.Time
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Location  mo.Option[string]
}

// OpenQuickAdd opens the form, filling blank times with 14:00 to 16:00.
// Tutors can only add shifts for themselves and never pick a location.
func (c *Controller) OpenQuickAdd(prefill QuickAddForm) error {
	if c.busy() {
		return ErrGestureActive
	}
	form, err := c.gateQuickAdd(prefill)
	if err != nil {
		return err
	}
	if form.StartTime == "" {
		form.StartTime = defaultQuickAddStart
	}
	if form.EndTime == "" {
		form.EndTime = defaultQuickAddEnd
	}
	c.quickAdd = &form
	return nil
}

// QuickAdd returns the open form
func (c *Controller) QuickAdd() (QuickAddForm, bool) {
	if c.quickAdd == nil {
		return QuickAddForm{}, false
	}
	return *c.quickAdd, true
}

// SubmitQuickAdd validates the form and appends a draft shift. An invalid
// time range or a conflict leaves the form open; success closes it.
func (c *Controller) SubmitQuickAdd(ctx context.Context, form QuickAddForm) (model.Shift, error) {
	if c.quickAdd == nil {
		return model.Shift{}, ErrNoGesture
	}
	form, err := c.gateQuickAdd(form)
	if err != nil {
		return model.Shift{}, err
	}
	c.quickAdd = &form

	user, ok := c.ref.user(form.UserID)
	if !ok {
		return model.Shift{}, ErrUnknownUser
	}

	start := timeutil.ParseTimeForDay(form.Day, form.StartTime)
	end := timeutil.ParseTimeForDay(form.Day, form.EndTime)
	if !end.After(start) {
		return model.Shift{}, ErrInvalidTimeRange
	}

	shift, err := c.createDraft(ctx, user, form.Location, start, end, QuickAddNote)
	if err != nil {
		return model.Shift{}, err
	}
	c.quickAdd = nil
	return shift, nil
}

// CloseQuickAdd discards the form
func (c *Controller) CloseQuickAdd() {
	c.quickAdd = nil
}

func (c *Controller) gateQuickAdd(form QuickAddForm) (QuickAddForm, error) {
	if c.viewer == nil {
		return form, auth.ErrForbidden
	}
	if c.viewer.IsAdmin() {
		return form, nil
	}
	if form.UserID != "" && form.UserID != c.viewer.ID {
		return form, auth.ErrForbidden
	}
	form.UserID = c.viewer.ID
	form.Location = mo.None[string]()
	return form, nil
}
