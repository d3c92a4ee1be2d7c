package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/store"
)

// Mailer sends plain-text email
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// TimeOffDecision is the outcome of approving or denying a request
type TimeOffDecision struct {
	Request     model.TimeOffRequest
	Notified    bool
	NotifyError string // set when the email could not be sent
}

// DecideTimeOff moves a pending request to approved or denied and, when a
// mailer is configured, emails the requester. A failed email does not undo
// the decision.
func DecideTimeOff(
	ctx context.Context,
	requests *store.TimeOffStore,
	users auth.UserLister,
	mailer Mailer,
	viewer *model.AuthUser,
	id string,
	status model.TimeOffStatus,
	logger *zap.Logger,
) (*TimeOffDecision, error) {
	if err := auth.RequireAdmin(viewer); err != nil {
		return nil, err
	}

	logger.Debug("Deciding time off", zap.String("request_id", id), zap.String("status", string(status)))

	req, err := requests.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update time off: %w", err)
	}
	decision := &TimeOffDecision{Request: req}

	if mailer == nil {
		return decision, nil
	}

	roster, err := users.FetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	var requester *model.User
	for i := range roster {
		if roster[i].ID == req.UserID {
			requester = &roster[i]
			break
		}
	}
	if requester == nil || requester.Email == "" {
		logger.Warn("No email for time off requester", zap.String("user_id", req.UserID))
		decision.NotifyError = "no email address on record"
		return decision, nil
	}

	subject, body := timeOffEmail(*requester, req)
	if err := mailer.SendEmail(requester.Email, subject, body); err != nil {
		logger.Warn("Failed to send time off email",
			zap.String("user_id", requester.ID),
			zap.String("email", requester.Email),
			zap.Error(err))
		decision.NotifyError = err.Error()
		return decision, nil
	}

	decision.Notified = true
	logger.Info("Time off decision sent",
		zap.String("request_id", req.ID),
		zap.String("email", requester.Email))
	return decision, nil
}

func timeOffEmail(user model.User, req model.TimeOffRequest) (string, string) {
	period := req.StartDate
	if req.EndDate != req.StartDate {
		period += " to " + req.EndDate
	}
	if !req.AllDay && req.StartTime != "" && req.EndTime != "" {
		period += fmt.Sprintf(" (%s-%s)", req.StartTime, req.EndTime)
	}

	subject := fmt.Sprintf("Time off request %s", req.Status)
	body := fmt.Sprintf("Hi %s,\n\nYour %s time off request for %s has been %s.\n\nThanks,\nSwiftShift",
		user.FirstName, req.Type, period, req.Status)
	return subject, body
}
