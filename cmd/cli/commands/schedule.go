package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// ScheduleCmd creates the schedule command
func ScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [day]",
		Short: "Show the schedule grid for the working week or one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, _ := cmd.Flags().GetString("location")
			scopeFlag, _ := cmd.Flags().GetString("scope")
			noColor, _ := cmd.Flags().GetBool("no-color")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}

			var onlyDay *int
			if len(args) == 1 {
				day, err := parseDay(args[0], app.Anchor(), app.Now())
				if err != nil {
					return err
				}
				if err := app.SetAnchor(day); err != nil {
					return err
				}
				idx := timeutil.ISOWeekday(day) - 1
				onlyDay = &idx
			}

			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}

			scope := schedule.ScopeLocation
			if scopeFlag == string(schedule.ScopeUser) || (!cmd.Flags().Changed("scope") && viewer.Role == model.RoleTutor) {
				scope = schedule.ScopeUser
			}

			events, err := app.Availability.List(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list availability: %w", err)
			}
			requests, err := app.TimeOff.List(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list time off: %w", err)
			}

			if banner := controller.Banner(); banner != "" {
				app.printf("%s\n\n", banner)
			}

			start, end := week.Days[0], week.Days[len(week.Days)-1]
			app.printf("Week of %s to %s (%s scope)\n\n", start.Format("Mon 02 Jan"), end.Format("Mon 02 Jan"), scope)

			users := week.Users
			if scope == schedule.ScopeUser {
				users = schedule.VisibleUsers(week.Users, viewer)
			}
			style := gridStyle{
				Names:     schedule.DisplayNames(week.Users),
				Locations: week.Locations,
				Positions: week.Positions,
				IsDraft:   week.IsDraft,
				Color:     !noColor && isTerminal(),
			}
			shifts := week.Shifts()

			for i, day := range week.Days {
				if onlyDay != nil && *onlyDay != i {
					continue
				}

				filter := schedule.Filter{Scope: scope, LocationID: location, Viewer: viewer}
				if scope == schedule.ScopeLocation && viewer.Role == model.RoleTutor && !cmd.Flags().Changed("location") {
					filter.LocationID = schedule.TutorLocationForDay(viewer.ID, day, shifts, week.Users, week.Locations)
				}

				dayShifts := schedule.GroupByDay(filter.Apply(shifts), []time.Time{day})[0].Shifts
				grid := schedule.BuildDayGrid(day, users, dayShifts, filter, app.Hours(), app.Cfg.Schedule.SlotMinutes, controller.Overrides())

				style.Closed = week.Closed[timeutil.DateKey(day)]
				renderDayGrid(app.Out, grid, style)

				if style.Closed == "" && viewer.IsAdmin() {
					chips := make(map[string][]model.AvailabilityEvent)
					for _, u := range users {
						if visible := schedule.VisibleAvailability(events, requests, u.ID, day); len(visible) > 0 {
							chips[u.ID] = visible
						}
					}
					renderAvailability(app.Out, chips, users, style)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("location", schedule.AllLocations, "Location id to show, or \"all\"")
	cmd.Flags().String("scope", string(schedule.ScopeLocation), "Grid scope: location or user")
	cmd.Flags().Bool("no-color", false, "Disable coloured output")

	return cmd
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
