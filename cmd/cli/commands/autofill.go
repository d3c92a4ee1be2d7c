package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
	"github.com/jakechorley/swiftshift/pkg/core/services"
)

// AutofillCmd creates the autofill command
func AutofillCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autofill",
		Short: "Suggest draft shifts for the working week from tutor availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			perLocation, _ := cmd.Flags().GetInt("per-location")
			maxDays, _ := cmd.Flags().GetInt("max-days")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			if err := auth.RequireAdmin(viewer); err != nil {
				return err
			}

			if perLocation == 0 {
				perLocation = app.Cfg.Autofill.PerLocation
			}
			if maxDays == 0 {
				maxDays = app.Cfg.Autofill.MaxDaysPerTutor
			}

			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			events, err := app.Availability.List(app.Ctx)
			if err != nil {
				return err
			}
			requests, err := app.TimeOff.List(app.Ctx)
			if err != nil {
				return err
			}

			suggestion, err := services.SuggestWeek(week, events, requests, services.AutofillOptions{
				PerLocation:     perLocation,
				MaxDaysPerTutor: maxDays,
				Hours:           app.Hours(),
			}, app.Logger)
			if err != nil {
				return err
			}

			names := schedule.DisplayNames(week.Users)
			locations := make(map[string]string, len(week.Locations))
			for _, l := range week.Locations {
				locations[l.ID] = l.Name
			}

			if len(suggestion.Shifts) == 0 {
				app.printf("No shifts to suggest.\n")
			}
			for _, s := range suggestion.Shifts {
				app.printf("  + %s %s %s-%s %s\n",
					s.Start.Format("Mon 02 Jan"), names[s.UserID],
					s.Start.Format("15:04"), s.End.Format("15:04"), locations[s.LocationID])
			}
			for _, u := range suggestion.Underfilled {
				app.printf("  %s! %s %s has %d of %d tutors%s\n",
					colorYellow, u.Date, locations[u.LocationID], u.Have, u.Want, colorReset)
			}

			if dryRun {
				return nil
			}

			added, err := services.ApplySuggestion(app.Ctx, app.Drafts, week, suggestion, app.Logger)
			if err != nil {
				return err
			}
			app.printf("✓ Added %d draft shifts\n", len(added))
			return nil
		},
	}

	cmd.Flags().Int("per-location", 0, "Tutors wanted per location each day (defaults to config)")
	cmd.Flags().Int("max-days", 0, "Most days any tutor is given (defaults to config)")
	cmd.Flags().Bool("dry-run", false, "Print suggestions without adding drafts")

	return cmd
}
