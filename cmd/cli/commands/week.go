package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/core/timeutil"
)

// WeekCmd creates the week command
func WeekCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "week [day|next|prev]",
		Short: "Show or change the working week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var day time.Time
				switch args[0] {
				case "next":
					day = app.Anchor().AddDate(0, 0, 7)
				case "prev":
					day = app.Anchor().AddDate(0, 0, -7)
				default:
					var err error
					if day, err = parseDay(args[0], app.Anchor(), app.Now()); err != nil {
						return err
					}
				}
				if err := app.SetAnchor(day); err != nil {
					return err
				}
			}

			monday, sunday := timeutil.WeekBounds(app.Anchor())
			app.printf("Working week: %s to %s\n", timeutil.DateKey(monday), timeutil.DateKey(sunday))
			return nil
		},
	}
}
