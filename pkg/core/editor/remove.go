package editor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RemovalPrompt is the confirmation question shown before a removal
const RemovalPrompt = "Remove this shift?"

// RequestRemoval asks for confirmation before removing shiftID
func (c *Controller) RequestRemoval(ctx context.Context, shiftID string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if c.busy() {
		return ErrGestureActive
	}
	if _, err := c.findShift(ctx, shiftID); err != nil {
		return err
	}
	c.pendingRemoval = shiftID
	return nil
}

// PendingRemoval returns the shift awaiting confirmation
func (c *Controller) PendingRemoval() (string, bool) {
	return c.pendingRemoval, c.pendingRemoval != ""
}

// ConfirmRemoval answers the confirmation. Declining keeps the shift and
// returns ErrNotConfirmed; accepting removes it and its pending overrides.
func (c *Controller) ConfirmRemoval(ctx context.Context, confirmed bool) error {
	id := c.pendingRemoval
	if id == "" {
		return ErrNoGesture
	}
	c.pendingRemoval = ""

	if !confirmed {
		return ErrNotConfirmed
	}

	if err := c.shifts.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove shift: %w", err)
	}
	delete(c.overrides, id)

	c.logger.Info("Shift removed", zap.String("shift_id", id))
	return nil
}
