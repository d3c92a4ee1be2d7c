package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/mockdata"
)

// SeedReferenceCmd creates the seedReference command
func SeedReferenceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seedReference",
		Short: "Load the demo locations, positions and roster into the configured data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := app.Viewer()
			if err != nil {
				return err
			}
			if err := auth.RequireAdmin(viewer); err != nil {
				return err
			}
			if app.Seeder == nil {
				return fmt.Errorf("the %s data source already serves the demo roster", app.Cfg.DataSource)
			}

			if err := app.Seeder.SeedReference(app.Ctx, mockdata.Locations, mockdata.Positions, mockdata.Users); err != nil {
				return err
			}
			app.Cache.Invalidate()

			app.printf("✓ Seeded %d locations, %d positions, %d users\n",
				len(mockdata.Locations), len(mockdata.Positions), len(mockdata.Users))
			return nil
		},
	}
}

// RefreshCmd creates the refresh command
func RefreshCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Drop cached data so the next command refetches it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Cache.Invalidate()
			app.printf("✓ Cache cleared\n")
			return nil
		},
	}
}
