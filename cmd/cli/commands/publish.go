package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/clients/sheetsclient"
	"github.com/jakechorley/swiftshift/pkg/core/services"
)

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Commit all draft shifts and optionally write the week to the publish sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetBool("sheet")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			if err := auth.RequireAdmin(viewer); err != nil {
				return err
			}

			published, err := services.PublishDrafts(app.Ctx, app.Database, app.Drafts, app.Logger)
			if err != nil {
				return err
			}
			app.ResetEditor()

			if len(published) == 0 {
				app.printf("No drafts to publish.\n")
			} else {
				app.printf("\n✓ Published %d shifts\n\n", len(published))
			}

			if !sheet {
				return nil
			}
			if app.SheetsClient == nil || app.Cfg.PublishSheetID == "" {
				return fmt.Errorf("publishSheetID is not configured")
			}

			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			out, err := services.PublishWeekSheet(app.SheetsClient, app.Cfg.PublishSheetID, week, app.Logger)
			if err != nil {
				return err
			}
			app.printf("✓ Wrote %d tutors to tab %q\n", len(out.Rows), sheetsclient.WeekTabTitle(week.Monday))
			return nil
		},
	}

	cmd.Flags().Bool("sheet", false, "Also write the working week to the publish spreadsheet")

	return cmd
}

// DraftsCmd creates the drafts command
func DraftsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List unpublished draft shifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			discard, _ := cmd.Flags().GetBool("discard")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}

			if discard {
				if err := auth.RequireAdmin(viewer); err != nil {
					return err
				}
				if err := app.Drafts.Clear(app.Ctx); err != nil {
					return err
				}
				app.ResetEditor()
				app.printf("✓ Drafts discarded\n")
				return nil
			}

			drafts, err := app.Drafts.List(app.Ctx)
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				app.printf("No drafts.\n")
				return nil
			}
			app.printf("\n%d drafts:\n", len(drafts))
			for _, d := range drafts {
				if !auth.CanManage(viewer, d.UserID) {
					continue
				}
				app.printf("  [%s] user %s, %s %s-%s, location %s (%s)\n", d.ID, d.UserID,
					d.Start.Format("Mon 02 Jan"), d.Start.Format("15:04"), d.End.Format("15:04"), d.LocationID, d.Notes)
			}
			app.printf("\n")
			return nil
		},
	}

	cmd.Flags().Bool("discard", false, "Delete every draft")

	return cmd
}
