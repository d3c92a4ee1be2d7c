package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/services"
)

// ListTimeOffCmd creates the listTimeOff command
func ListTimeOffCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listTimeOff",
		Short: "List time off requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userFlag, _ := cmd.Flags().GetString("user")
			pendingOnly, _ := cmd.Flags().GetBool("pending")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}

			var requests []model.TimeOffRequest
			if userFlag == "" && viewer.IsAdmin() {
				requests, err = app.TimeOff.List(app.Ctx)
			} else {
				var owner string
				if owner, err = ownerFor(viewer, userFlag); err != nil {
					return err
				}
				requests, err = app.TimeOff.ForUser(app.Ctx, owner)
			}
			if err != nil {
				return err
			}

			shown := 0
			for _, r := range requests {
				if pendingOnly && r.Status != model.StatusPending {
					continue
				}
				app.printf("  [%s] user %s %s %s %s\n", r.ID, r.UserID, r.Type, describePeriod(r), paintStatus(r.Status))
				shown++
			}
			if shown == 0 {
				app.printf("No time off requests.\n")
			}
			return nil
		},
	}

	cmd.Flags().String("user", "", "Tutor id (admins only)")
	cmd.Flags().Bool("pending", false, "Only show pending requests")

	return cmd
}

func describePeriod(r model.TimeOffRequest) string {
	period := r.StartDate
	if r.EndDate != r.StartDate {
		period += ".." + r.EndDate
	}
	if r.AllDay {
		return period + " all day"
	}
	return fmt.Sprintf("%s %s-%s", period, r.StartTime, r.EndTime)
}

func paintStatus(status model.TimeOffStatus) string {
	switch status {
	case model.StatusApproved:
		return colorGreen + string(status) + colorReset
	case model.StatusDenied:
		return colorRed + string(status) + colorReset
	}
	return colorYellow + string(status) + colorReset
}

// RequestTimeOffCmd creates the requestTimeOff command
func RequestTimeOffCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requestTimeOff <type> <start_date> [end_date]",
		Short: "Request time off (type: unpaid, paid, sick, holiday)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userFlag, _ := cmd.Flags().GetString("user")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			notes, _ := cmd.Flags().GetString("notes")

			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			owner, err := ownerFor(viewer, userFlag)
			if err != nil {
				return err
			}

			start, err := parseDay(args[1], app.Anchor(), app.Now())
			if err != nil {
				return err
			}
			end := start
			if len(args) == 3 {
				if end, err = parseDay(args[2], app.Anchor(), app.Now()); err != nil {
					return err
				}
			}

			req := model.TimeOffRequest{
				UserID:    owner,
				Type:      model.TimeOffType(args[0]),
				StartDate: start.Format(model.DateLayout),
				EndDate:   end.Format(model.DateLayout),
				AllDay:    from == "" && to == "",
				Notes:     notes,
			}
			if !req.AllDay {
				if req.StartTime, err = parseClock(from); err != nil {
					return err
				}
				if req.EndTime, err = parseClock(to); err != nil {
					return err
				}
			}

			created, err := app.TimeOff.Create(app.Ctx, req)
			if err != nil {
				return err
			}
			app.printf("✓ Time off requested [%s] %s\n", created.ID, describePeriod(created))
			return nil
		},
	}

	cmd.Flags().String("user", "", "Tutor id (admins only)")
	cmd.Flags().String("from", "", "Start time for a partial day (HH:MM)")
	cmd.Flags().String("to", "", "End time for a partial day (HH:MM)")
	cmd.Flags().String("notes", "", "Free-text notes")

	return cmd
}

func decideTimeOffCmd(app *AppContext, use, short string, status model.TimeOffStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}

			var mailer services.Mailer
			if app.GmailClient != nil && app.Cfg.Notifications.Enabled {
				mailer = app.GmailClient
			}

			decision, err := services.DecideTimeOff(app.Ctx, app.TimeOff, app.Database, mailer, viewer, args[0], status, app.Logger)
			if err != nil {
				return err
			}

			app.printf("✓ Request %s %s\n", decision.Request.ID, paintStatus(decision.Request.Status))
			switch {
			case decision.Notified:
				app.printf("  Notification sent\n")
			case decision.NotifyError != "":
				app.printf("  ⚠️  Notification failed: %s\n", decision.NotifyError)
			}
			return nil
		},
	}
}

// ApproveTimeOffCmd creates the approveTimeOff command
func ApproveTimeOffCmd(app *AppContext) *cobra.Command {
	return decideTimeOffCmd(app, "approveTimeOff", "Approve a pending time off request", model.StatusApproved)
}

// DenyTimeOffCmd creates the denyTimeOff command
func DenyTimeOffCmd(app *AppContext) *cobra.Command {
	return decideTimeOffCmd(app, "denyTimeOff", "Deny a pending time off request", model.StatusDenied)
}

// RemoveTimeOffCmd creates the removeTimeOff command
func RemoveTimeOffCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeTimeOff <id>",
		Short: "Delete a time off request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			existing, err := app.TimeOff.Get(app.Ctx, args[0])
			if err != nil {
				return err
			}
			if err := auth.RequireOwnerOrAdmin(viewer, existing.UserID); err != nil {
				return err
			}
			if err := app.TimeOff.Remove(app.Ctx, existing.ID); err != nil {
				return err
			}
			app.printf("✓ Time off request removed [%s]\n", existing.ID)
			return nil
		},
	}
}
