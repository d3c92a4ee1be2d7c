package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// TimeOffKey is the backend key of the time-off collection
const TimeOffKey = "timeOffRequests"

var (
	// ErrInvalidTransition is returned when a request is not pending
	ErrInvalidTransition = errors.New("only pending requests can be approved or denied")
	// ErrInvertedRange is returned when a request ends before it starts
	ErrInvertedRange = errors.New("time off end date is before start date")
)

// TimeOffStore holds time-off requests and their approval state
type TimeOffStore struct {
	*Store[model.TimeOffRequest]
}

func NewTimeOffStore(backend Backend, logger *zap.Logger) *TimeOffStore {
	return &TimeOffStore{
		Store: New(TimeOffKey, backend, Codec[model.TimeOffRequest]{
			ID:       func(r model.TimeOffRequest) string { return r.ID },
			Decode:   decodeTimeOff,
			Validate: validateTimeOff,
		}, logger),
	}
}

// Create adds a new pending request
func (s *TimeOffStore) Create(ctx context.Context, req model.TimeOffRequest) (model.TimeOffRequest, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = model.StatusPending
	if req.AllDay {
		req.StartTime = ""
		req.EndTime = ""
	}
	if err := s.Add(ctx, req); err != nil {
		return model.TimeOffRequest{}, fmt.Errorf("failed to add time off request: %w", err)
	}
	return req, nil
}

// UpdateStatus moves a pending request to approved or denied
func (s *TimeOffStore) UpdateStatus(ctx context.Context, id string, status model.TimeOffStatus) (model.TimeOffRequest, error) {
	if status != model.StatusApproved && status != model.StatusDenied {
		return model.TimeOffRequest{}, fmt.Errorf("%w: target status %q", ErrInvalidTransition, status)
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return model.TimeOffRequest{}, err
	}
	if req.Status != model.StatusPending {
		return model.TimeOffRequest{}, fmt.Errorf("%w: request %s is %s", ErrInvalidTransition, id, req.Status)
	}

	req.Status = status
	if err := s.Update(ctx, req); err != nil {
		return model.TimeOffRequest{}, fmt.Errorf("failed to update time off request: %w", err)
	}
	return req, nil
}

// ForUser lists the requests owned by userID
func (s *TimeOffStore) ForUser(ctx context.Context, userID string) ([]model.TimeOffRequest, error) {
	requests, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.TimeOffRequest
	for _, r := range requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func validateTimeOff(req model.TimeOffRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.StartDate > req.EndDate {
		return ErrInvertedRange
	}
	return nil
}

func decodeTimeOff(raw json.RawMessage) (model.TimeOffRequest, bool) {
	var stored struct {
		model.TimeOffRequest
		ID     any `json:"id"`
		UserID any `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return model.TimeOffRequest{}, false
	}
	req := stored.TimeOffRequest
	req.ID = idValue(stored.ID)
	req.UserID = idValue(stored.UserID)
	if validateTimeOff(req) != nil {
		return model.TimeOffRequest{}, false
	}
	return req, true
}
