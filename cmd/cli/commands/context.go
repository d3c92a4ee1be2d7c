package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/internal/config"
	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/calendar"
	"github.com/jakechorley/swiftshift/pkg/clients/gmailclient"
	"github.com/jakechorley/swiftshift/pkg/clients/sheetsclient"
	"github.com/jakechorley/swiftshift/pkg/core/editor"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/services"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
	"github.com/jakechorley/swiftshift/pkg/db"
	"github.com/jakechorley/swiftshift/pkg/store"
)

// ReferenceSeeder loads reference data into a data source
type ReferenceSeeder interface {
	SeedReference(ctx context.Context, locations []model.Location, positions []model.Position, users []model.User) error
}

// AppContext holds the application dependencies shared across all commands.
// In an interactive session it lives for the whole session, so the editor
// keeps its gesture state between commands.
type AppContext struct {
	Cfg          *config.Config
	Ctx          context.Context
	Logger       *zap.Logger
	Out          io.Writer
	In           *bufio.Reader
	Now          func() time.Time
	Database     db.Database
	Cache        *db.CachedSource
	Seeder       ReferenceSeeder // nil for the mock source
	Drafts       *store.DraftStore
	Availability *store.AvailabilityStore
	TimeOff      *store.TimeOffStore
	Session      *auth.Session
	Accounts     auth.Authenticator
	Closures     calendar.Closures
	SheetsClient *sheetsclient.Client // nil unless a Google integration is configured
	GmailClient  *gmailclient.Client  // nil unless notifications are enabled

	anchor time.Time
	editor *editorState
}

type editorState struct {
	controller *editor.Controller
	viewerID   string
	monday     time.Time
}

// Anchor returns a day inside the week being worked on
func (app *AppContext) Anchor() time.Time {
	if app.anchor.IsZero() {
		return app.Now()
	}
	return app.anchor
}

// SetAnchor moves the working week. Moving to another week discards the
// editor, which is refused while one of its gestures is open.
func (app *AppContext) SetAnchor(day time.Time) error {
	monday, _ := timeutil.WeekBounds(day)
	if app.editor != nil && !app.editor.monday.Equal(monday) {
		if app.editor.controller.GestureActive() {
			return editor.ErrGestureActive
		}
		app.editor = nil
	}
	app.anchor = day
	return nil
}

// Hours converts the configured opening hours
func (app *AppContext) Hours() schedule.HoursPolicy {
	return HoursFromConfig(app.Cfg.Schedule)
}

// HoursFromConfig converts configured opening hours into a policy
func HoursFromConfig(cfg config.ScheduleConfig) schedule.HoursPolicy {
	return schedule.HoursPolicy{
		OpenHour:         cfg.OpenHour,
		CloseHour:        cfg.CloseHour,
		LastDayCloseHour: cfg.LastDayCloseHour,
		LastWeekday:      time.Friday,
	}
}

// LoadWeek loads the working week
func (app *AppContext) LoadWeek() (*services.Week, error) {
	return services.LoadWeek(app.Ctx, app.Database, app.Drafts, app.Closures, app.Anchor(), app.Logger)
}

// Viewer returns the signed-in user
func (app *AppContext) Viewer() (*model.AuthUser, error) {
	return app.Session.Require(app.Ctx)
}

// Editor returns the controller for the signed-in user and working week,
// creating a fresh one when either changed
func (app *AppContext) Editor(week *services.Week) (*editor.Controller, error) {
	viewer, err := app.Viewer()
	if err != nil {
		return nil, err
	}
	if app.editor != nil && app.editor.viewerID == viewer.ID && app.editor.monday.Equal(week.Monday) {
		return app.editor.controller, nil
	}

	board := services.NewShiftBoard(app.Database, app.Drafts, week.Monday, app.Logger)
	controller := editor.NewController(board, week.Reference(), viewer, editor.Options{
		Hours:           app.Hours(),
		StepMinutes:     app.Cfg.Schedule.StepMinutes,
		LabelWidth:      app.Cfg.Schedule.LabelWidthPx,
		MinStepWidth:    app.Cfg.Schedule.MinStepWidthPx,
		StrictUserScope: app.Cfg.Schedule.StrictUserScope,
	}, app.Logger)

	open, close := app.Hours().Bounds(week.Monday)
	slots := schedule.TotalSlots(open, close, app.Cfg.Schedule.SlotMinutes)
	controller.ResizeViewport(app.Cfg.Schedule.LabelWidthPx+app.Cfg.Schedule.StepWidthPx*float64(slots), slots)

	app.editor = &editorState{controller: controller, viewerID: viewer.ID, monday: week.Monday}
	return controller, nil
}

// ResetEditor discards the editor and any gesture in progress
func (app *AppContext) ResetEditor() {
	app.editor = nil
}

func (app *AppContext) printf(format string, args ...any) {
	fmt.Fprintf(app.Out, format, args...)
}

// prompt asks question and reads one line of input. End of input counts as
// an empty answer.
func (app *AppContext) prompt(question string) (string, error) {
	app.printf("%s", question)
	line, err := app.In.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
