package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// parseWeekday accepts 1-7 (Monday first) or a weekday name
func parseWeekday(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > 7 {
			return 0, fmt.Errorf("day of week must be 1-7, got %d", n)
		}
		return n, nil
	}
	if offset, ok := weekdayNames[strings.ToLower(raw)]; ok {
		return offset + 1, nil
	}
	return 0, fmt.Errorf("invalid day of week %q", raw)
}

func weekdayLabel(day int) string {
	return [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}[day-1]
}

// ownerFor returns the user a command acts on: the --user flag for admins,
// otherwise the viewer
func ownerFor(viewer *model.AuthUser, requested string) (string, error) {
	if requested == "" {
		return viewer.ID, nil
	}
	if err := auth.RequireOwnerOrAdmin(viewer, requested); err != nil {
		return "", err
	}
	return requested, nil
}

// ListAvailabilityCmd creates the listAvailability command
func ListAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listAvailability",
		Short: "List recurring weekly availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userFlag, _ := cmd.Flags().GetString("user")
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}

			var events []model.AvailabilityEvent
			if userFlag == "" && viewer.IsAdmin() {
				events, err = app.Availability.List(app.Ctx)
			} else {
				var owner string
				if owner, err = ownerFor(viewer, userFlag); err != nil {
					return err
				}
				events, err = app.Availability.ForUser(app.Ctx, owner)
			}
			if err != nil {
				return err
			}

			sort.SliceStable(events, func(i, j int) bool {
				if events[i].DayOfWeek != events[j].DayOfWeek {
					return events[i].DayOfWeek < events[j].DayOfWeek
				}
				return timeutil.ClockMinutes(events[i].StartTime) < timeutil.ClockMinutes(events[j].StartTime)
			})

			if len(events) == 0 {
				app.printf("No availability recorded.\n")
				return nil
			}
			for _, e := range events {
				line := fmt.Sprintf("  [%s] user %s %s %s-%s %s", e.ID, e.UserID, weekdayLabel(e.DayOfWeek), e.StartTime, e.EndTime, e.Preference)
				if e.Notes != "" {
					line += " - " + e.Notes
				}
				app.printf("%s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().String("user", "", "Tutor id (admins only)")

	return cmd
}

// AddAvailabilityCmd creates the addAvailability command
func AddAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addAvailability <weekday> <start> <end>",
		Short: "Record a recurring weekly availability window",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := availabilityFromArgs(cmd, args)
			if err != nil {
				return err
			}

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			userFlag, _ := cmd.Flags().GetString("user")
			if event.UserID, err = ownerFor(viewer, userFlag); err != nil {
				return err
			}

			created, err := app.Availability.Create(app.Ctx, event)
			if err != nil {
				return err
			}
			app.printf("✓ Availability added [%s]\n", created.ID)
			return nil
		},
	}

	availabilityFlags(cmd)

	return cmd
}

// UpdateAvailabilityCmd creates the updateAvailability command
func UpdateAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updateAvailability <id> <weekday> <start> <end>",
		Short: "Replace an availability window",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			existing, err := app.Availability.Get(app.Ctx, args[0])
			if err != nil {
				return err
			}
			if err := auth.RequireOwnerOrAdmin(viewer, existing.UserID); err != nil {
				return err
			}

			event, err := availabilityFromArgs(cmd, args[1:])
			if err != nil {
				return err
			}
			event.ID = existing.ID
			event.UserID = existing.UserID

			if err := app.Availability.Update(app.Ctx, event); err != nil {
				return err
			}
			app.printf("✓ Availability updated [%s]\n", event.ID)
			return nil
		},
	}

	availabilityFlags(cmd)

	return cmd
}

// RemoveAvailabilityCmd creates the removeAvailability command
func RemoveAvailabilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeAvailability <id>",
		Short: "Delete an availability window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			existing, err := app.Availability.Get(app.Ctx, args[0])
			if err != nil {
				return err
			}
			if err := auth.RequireOwnerOrAdmin(viewer, existing.UserID); err != nil {
				return err
			}
			if err := app.Availability.Remove(app.Ctx, existing.ID); err != nil {
				return err
			}
			app.printf("✓ Availability removed [%s]\n", existing.ID)
			return nil
		},
	}
}

func availabilityFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "Tutor id (admins only)")
	cmd.Flags().Bool("unavailable", false, "Record the window as unavailable")
	cmd.Flags().String("notes", "", "Free-text notes")
}

func availabilityFromArgs(cmd *cobra.Command, args []string) (model.AvailabilityEvent, error) {
	day, err := parseWeekday(args[0])
	if err != nil {
		return model.AvailabilityEvent{}, err
	}
	start, err := parseClock(args[1])
	if err != nil {
		return model.AvailabilityEvent{}, err
	}
	end, err := parseClock(args[2])
	if err != nil {
		return model.AvailabilityEvent{}, err
	}
	if timeutil.ClockMinutes(end) <= timeutil.ClockMinutes(start) {
		return model.AvailabilityEvent{}, fmt.Errorf("end time must be after start time")
	}

	unavailable, _ := cmd.Flags().GetBool("unavailable")
	notes, _ := cmd.Flags().GetString("notes")

	event := model.AvailabilityEvent{
		DayOfWeek:  day,
		StartTime:  start,
		EndTime:    end,
		Preference: model.PreferenceAvailable,
		Notes:      notes,
	}
	if unavailable {
		event.Preference = model.PreferenceUnavailable
	}
	return event, nil
}
