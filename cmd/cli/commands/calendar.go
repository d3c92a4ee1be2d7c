package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/services"
)

// openOutput returns stdout for "-" and a created file otherwise
func openOutput(app *AppContext, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return app.Out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// ExportCalendarCmd creates the exportCalendar command
func ExportCalendarCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportCalendar <file|->",
		Short: "Export the working week's shifts as an .ics calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, _ := cmd.Flags().GetString("location")
			mine, _ := cmd.Flags().GetBool("mine")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}

			filter := schedule.Filter{Scope: schedule.ScopeLocation, LocationID: location, Viewer: viewer}
			if mine || !viewer.IsAdmin() {
				filter.Scope = schedule.ScopeUser
			}

			w, closeFn, err := openOutput(app, args[0])
			if err != nil {
				return err
			}
			n, err := services.ExportWeekCalendar(w, week, filter, app.Closures, app.Now(), app.Logger)
			if cerr := closeFn(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if args[0] != "-" {
				app.printf("✓ Exported %d shifts to %s\n", n, args[0])
			}
			return nil
		},
	}

	cmd.Flags().String("location", schedule.AllLocations, "Location id, or \"all\"")
	cmd.Flags().Bool("mine", false, "Only the signed-in user's shifts")

	return cmd
}

// ExportAvailabilityCmd creates the exportAvailability command
func ExportAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportAvailability <file|->",
		Short: "Export weekly availability as recurring .ics events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userFlag, _ := cmd.Flags().GetString("user")
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			owner, err := ownerFor(viewer, userFlag)
			if err != nil {
				return err
			}
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(app, args[0])
			if err != nil {
				return err
			}
			n, err := services.ExportAvailabilityCalendar(app.Ctx, w, app.Availability, week, owner, app.Now())
			if cerr := closeFn(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if args[0] != "-" {
				app.printf("✓ Exported %d availability windows to %s\n", n, args[0])
			}
			return nil
		},
	}

	cmd.Flags().String("user", "", "Tutor id (admins only)")

	return cmd
}

// ImportAvailabilityCmd creates the importAvailability command
func ImportAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importAvailability <file>",
		Short: "Import weekly availability from an .ics calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userFlag, _ := cmd.Flags().GetString("user")
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			owner, err := ownerFor(viewer, userFlag)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			imported, err := services.ImportAvailabilityCalendar(app.Ctx, f, app.Availability, owner, uuid.NewString, app.Logger)
			if err != nil {
				return err
			}
			app.printf("✓ Imported %d availability windows\n", len(imported))
			return nil
		},
	}

	cmd.Flags().String("user", "", "Tutor id (admins only)")

	return cmd
}
