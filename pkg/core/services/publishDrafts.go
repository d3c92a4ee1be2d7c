package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/clients/sheetsclient"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
	"github.com/jakechorley/swiftshift/pkg/db"
	"github.com/jakechorley/swiftshift/pkg/store"
)

// WeekPublisher writes a finished week somewhere people can read it
type WeekPublisher interface {
	PublishWeek(spreadsheetID string, week *sheetsclient.PublishedWeek) error
}

// PublishDrafts commits every draft as a published shift and clears the
// draft store. Drafts are only cleared once the insert succeeded.
func PublishDrafts(ctx context.Context, writer db.ShiftWriter, drafts *store.DraftStore, logger *zap.Logger) ([]model.Shift, error) {
	pending, err := drafts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("No drafts to publish")
		return nil, nil
	}

	published := make([]model.Shift, len(pending))
	for i, s := range pending {
		s.Published = true
		published[i] = s
	}
	sort.Slice(published, func(i, j int) bool {
		return published[i].Start.Before(published[j].Start)
	})

	if err := writer.InsertShifts(ctx, published); err != nil {
		return nil, fmt.Errorf("failed to insert shifts: %w", err)
	}
	if err := drafts.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear drafts: %w", err)
	}

	logger.Info("Published drafts", zap.Int("count", len(published)))
	return published, nil
}

// BuildPublishedWeek lays the week out as one row per tutor with a cell per
// day listing that day's merged blocks
func BuildPublishedWeek(week *Week) *sheetsclient.PublishedWeek {
	shifts := week.Shifts()
	names := schedule.DisplayNames(week.Users)

	out := &sheetsclient.PublishedWeek{Days: week.Days}
	for _, user := range week.Users {
		mine := schedule.ShiftsForUser(shifts, user.ID)
		if len(mine) == 0 {
			continue
		}

		row := sheetsclient.PublishedRow{Tutor: names[user.ID], Cells: make([]string, len(week.Days))}
		for i, group := range schedule.GroupByDay(mine, week.Days) {
			if name, closed := week.Closed[timeutil.DateKey(group.Day)]; closed {
				row.Cells[i] = "Closed: " + name
				continue
			}
			var blocks []string
			for _, interval := range schedule.MergeShifts(group.Shifts) {
				blocks = append(blocks, describeInterval(interval, week))
			}
			row.Cells[i] = strings.Join(blocks, "; ")
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// describeInterval renders "14:00-16:30 North Location (Math Tutor)"
func describeInterval(interval model.MergedInterval, week *Week) string {
	text := interval.Start.Format("15:04") + "-" + interval.End.Format("15:04")
	for _, l := range week.Locations {
		if l.ID == interval.LocationID {
			text += " " + l.Name
			break
		}
	}
	if label := schedule.PositionLabel(interval, week.Positions); label != "" {
		text += " (" + label + ")"
	}
	return text
}

// PublishWeekSheet writes the week to its own tab of the publish spreadsheet
func PublishWeekSheet(publisher WeekPublisher, spreadsheetID string, week *Week, logger *zap.Logger) (*sheetsclient.PublishedWeek, error) {
	published := BuildPublishedWeek(week)
	if err := publisher.PublishWeek(spreadsheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish week: %w", err)
	}
	logger.Info("Published week sheet",
		zap.String("tab", sheetsclient.WeekTabTitle(week.Monday)),
		zap.Int("rows", len(published.Rows)))
	return published, nil
}
