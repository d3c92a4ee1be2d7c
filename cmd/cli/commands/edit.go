package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/core/editor"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/core/schedule"
)

// QuickAddCmd creates the quickAdd command
func QuickAddCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quickAdd <day> [start] [end]",
		Short: "Add a draft shift (defaults 14:00 to 16:00)",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			location, _ := cmd.Flags().GetString("location")

			day, err := parseDay(args[0], app.Anchor(), app.Now())
			if err != nil {
				return err
			}
			form := editor.QuickAddForm{UserID: userID, Day: day, Location: schedule.ParseChoice(location)}
			if len(args) > 1 {
				if form.StartTime, err = parseClock(args[1]); err != nil {
					return err
				}
			}
			if len(args) > 2 {
				if form.EndTime, err = parseClock(args[2]); err != nil {
					return err
				}
			}

			if err := app.SetAnchor(day); err != nil {
				return err
			}
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}

			if err := controller.OpenQuickAdd(form); err != nil {
				return err
			}
			opened, _ := controller.QuickAdd()

			shift, err := controller.SubmitQuickAdd(app.Ctx, opened)
			if err != nil {
				controller.CloseQuickAdd()
				return describeEditError(err)
			}

			app.printf("\n✓ Draft shift added [%s]: %s %s-%s\n\n", shift.ID,
				shift.Start.Format("Mon 02 Jan"), shift.Start.Format("15:04"), shift.End.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().String("user", "", "Tutor id (admins only; tutors always add for themselves)")
	cmd.Flags().String("location", schedule.AutoChoice, "Location id, or \"auto\" for the tutor's default")

	return cmd
}

// DropAvailabilityCmd creates the dropAvailability command
func DropAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dropAvailability <availability_id|payload> <day>",
		Short: "Create a draft shift from an availability window",
		Long: `Create a draft shift from a tutor's availability window, as if the
availability chip had been dropped onto the day column. The first argument is
an availability id or a raw JSON drag payload.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[1], app.Anchor(), app.Now())
			if err != nil {
				return err
			}

			payload := args[0]
			if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
				event, err := app.Availability.Get(app.Ctx, payload)
				if err != nil {
					return err
				}
				if payload, err = editor.EncodeDragPayload(event); err != nil {
					return err
				}
			}

			if err := app.SetAnchor(day); err != nil {
				return err
			}
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}

			if err := controller.BeginDrop(payload, day); err != nil {
				return err
			}
			pending, _ := controller.PendingDrop()

			location, _ := cmd.Flags().GetString("location")
			if !cmd.Flags().Changed("location") {
				location, err = app.prompt(locationQuestion(pending.Payload.UserID, week.Users, week.Locations))
				if err != nil {
					controller.CancelDrop()
					return err
				}
			}

			shift, err := controller.ConfirmDrop(app.Ctx, schedule.ParseChoice(location))
			if err != nil {
				return describeEditError(err)
			}
			app.printf("\n✓ Draft shift added [%s]: %s %s-%s\n\n", shift.ID,
				shift.Start.Format("Mon 02 Jan"), shift.Start.Format("15:04"), shift.End.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().String("location", schedule.AutoChoice, "Location id, or \"auto\" (prompted when omitted)")

	return cmd
}

func locationQuestion(userID string, users []model.User, locations []model.Location) string {
	var allowed []string
	for _, u := range users {
		if u.ID == userID {
			allowed = u.Locations
		}
	}
	var options []string
	for _, l := range locations {
		for _, id := range allowed {
			if id == l.ID {
				options = append(options, fmt.Sprintf("%s=%s", l.ID, l.Name))
			}
		}
	}
	return fmt.Sprintf("Location (%s; blank for auto): ", strings.Join(options, ", "))
}

// ResizeShiftCmd creates the resizeShift command
func ResizeShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resizeShift <shift_id> <start|end> <steps>",
		Short: "Move one edge of a shift by whole steps (negative moves earlier)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			edge, err := editor.ParseEdge(args[1])
			if err != nil {
				return err
			}
			steps, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("steps must be a whole number: %w", err)
			}

			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}

			if err := controller.PointerDown(app.Ctx, args[0], edge, 0); err != nil {
				return err
			}
			if err := controller.PointerMove(app.Ctx, float64(steps)*controller.StepWidth()); err != nil {
				controller.CancelGesture()
				return err
			}
			shift, changed, err := controller.PointerUp(app.Ctx)
			if err != nil {
				return describeEditError(err)
			}
			if !changed {
				app.printf("Shift unchanged\n")
				return nil
			}
			app.printf("\n✓ Shift %s now %s-%s\n\n", shift.ID, shift.Start.Format("15:04"), shift.End.Format("15:04"))
			return nil
		},
	}
}

// PointerCmd creates the pointer command, which drives a resize one
// pointer event at a time
func PointerCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pointer <down <shift_id> <edge> <x>|move <x>|up|cancel|state>",
		Short: "Drive a resize gesture step by step (interactive sessions)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}

			switch args[0] {
			case "down":
				if len(args) != 4 {
					return fmt.Errorf("usage: pointer down <shift_id> <edge> <x>")
				}
				edge, err := editor.ParseEdge(args[2])
				if err != nil {
					return err
				}
				x, err := strconv.ParseFloat(args[3], 64)
				if err != nil {
					return fmt.Errorf("x must be a number: %w", err)
				}
				if err := controller.PointerDown(app.Ctx, args[1], edge, x); err != nil {
					return err
				}
			case "move":
				if len(args) != 2 {
					return fmt.Errorf("usage: pointer move <x>")
				}
				x, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("x must be a number: %w", err)
				}
				if err := controller.PointerMove(app.Ctx, x); err != nil {
					return err
				}
			case "up":
				shift, changed, err := controller.PointerUp(app.Ctx)
				if err != nil {
					return describeEditError(err)
				}
				if changed {
					app.printf("✓ Shift %s now %s-%s\n", shift.ID, shift.Start.Format("15:04"), shift.End.Format("15:04"))
				}
			case "cancel":
				controller.CancelGesture()
			case "state":
			default:
				return fmt.Errorf("unknown pointer action %q", args[0])
			}

			printDragState(app, controller)
			return nil
		},
	}
}

func printDragState(app *AppContext, controller *editor.Controller) {
	switch state := controller.DragState().(type) {
	case editor.Dragging:
		app.printf("Dragging %s edge of %s (anchor %.0fpx, %d steps, step %.0fpx)\n",
			state.Edge, state.ShiftID, state.AnchorX, state.StepsSoFar, controller.StepWidth())
		if o, ok := controller.Overrides()[state.ShiftID]; ok {
			app.printf("  preview %s-%s\n", o.Start.Format("15:04"), o.End.Format("15:04"))
		}
	default:
		app.printf("Idle\n")
	}
}

// ViewportCmd creates the viewport command
func ViewportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewport <width_px>",
		Short: "Re-measure resize steps for a rendered grid width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("width must be a number: %w", err)
			}
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}
			open, close := app.Hours().Bounds(week.Monday)
			controller.ResizeViewport(width, schedule.TotalSlots(open, close, app.Cfg.Schedule.SlotMinutes))
			app.printf("Step width: %.1fpx\n", controller.StepWidth())
			return nil
		},
	}
}

// RemoveShiftCmd creates the removeShift command
func RemoveShiftCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "removeShift <shift_id>",
		Short: "Remove a shift after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}

			if err := controller.RequestRemoval(app.Ctx, args[0]); err != nil {
				return err
			}

			confirmed := yes
			if !yes {
				answer, err := app.prompt(editor.RemovalPrompt + " [y/N] ")
				if err != nil {
					_ = controller.ConfirmRemoval(app.Ctx, false)
					return err
				}
				confirmed = strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
			}

			if err := controller.ConfirmRemoval(app.Ctx, confirmed); err != nil {
				if errors.Is(err, editor.ErrNotConfirmed) {
					app.printf("Shift kept\n")
					return nil
				}
				return err
			}
			app.printf("✓ Shift %s removed\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// BannerCmd creates the banner command
func BannerCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "banner [dismiss]",
		Short: "Show or dismiss the conflict banner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := app.LoadWeek()
			if err != nil {
				return err
			}
			controller, err := app.Editor(week)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if args[0] != "dismiss" {
					return fmt.Errorf("unknown banner action %q", args[0])
				}
				controller.DismissBanner()
				return nil
			}
			if banner := controller.Banner(); banner != "" {
				app.printf("%s\n", banner)
			} else {
				app.printf("No conflicts\n")
			}
			return nil
		},
	}
}

// describeEditError turns editor refusals into messages for the terminal
func describeEditError(err error) error {
	var conflict *schedule.ConflictError
	if errors.As(err, &conflict) || errors.Is(err, editor.ErrInvalidTimeRange) {
		return fmt.Errorf("not saved: %w", err)
	}
	return err
}
