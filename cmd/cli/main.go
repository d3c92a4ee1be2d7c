package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/cmd/cli/commands"
	"github.com/jakechorley/swiftshift/internal/config"
	"github.com/jakechorley/swiftshift/pkg/auth"
	"github.com/jakechorley/swiftshift/pkg/calendar"
	"github.com/jakechorley/swiftshift/pkg/clients/gmailclient"
	"github.com/jakechorley/swiftshift/pkg/clients/sheetsclient"
	"github.com/jakechorley/swiftshift/pkg/core/model"
	"github.com/jakechorley/swiftshift/pkg/db"
	"github.com/jakechorley/swiftshift/pkg/mockdata"
	"github.com/jakechorley/swiftshift/pkg/postgres"
	"github.com/jakechorley/swiftshift/pkg/sheetssql"
	"github.com/jakechorley/swiftshift/pkg/store"
	"github.com/jakechorley/swiftshift/pkg/utils"
	"github.com/jakechorley/swiftshift/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	pg      *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swiftshift",
		Short: "SwiftShift - Tutoring centre shift scheduling",
		Long:  `A CLI for viewing and editing the weekly tutoring schedule, tutor availability and time off.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if pg != nil {
				pg.Close()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(
		commands.LoginCmd(app),
		commands.LogoutCmd(app),
		commands.WhoAmICmd(app),
		commands.ScheduleCmd(app),
		commands.WeekCmd(app),
		commands.QuickAddCmd(app),
		commands.DropAvailabilityCmd(app),
		commands.ResizeShiftCmd(app),
		commands.PointerCmd(app),
		commands.ViewportCmd(app),
		commands.RemoveShiftCmd(app),
		commands.BannerCmd(app),
		commands.DraftsCmd(app),
		commands.PublishCmd(app),
		commands.AutofillCmd(app),
		commands.ListAvailabilityCmd(app),
		commands.AddAvailabilityCmd(app),
		commands.UpdateAvailabilityCmd(app),
		commands.RemoveAvailabilityCmd(app),
		commands.ListTimeOffCmd(app),
		commands.RequestTimeOffCmd(app),
		commands.ApproveTimeOffCmd(app),
		commands.DenyTimeOffCmd(app),
		commands.RemoveTimeOffCmd(app),
		commands.ExportCalendarCmd(app),
		commands.ExportAvailabilityCmd(app),
		commands.ImportAvailabilityCmd(app),
		commands.SeedReferenceCmd(app),
		commands.RefreshCmd(app),
		commands.InteractiveCmd(app),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, data source and client-side stores
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.Out = os.Stdout
	app.In = bufio.NewReader(os.Stdin)
	app.Now = time.Now

	var logFile string
	app.Logger, logFile, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := app.Logger

	logger.Info("Starting application", zap.String("environment", env), zap.String("log_file", logFile))

	logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Configuration loaded successfully", zap.String("data_source", app.Cfg.DataSource))

	if app.Cfg.NeedsGoogle() {
		if err := initGoogle(); err != nil {
			return err
		}
	}

	database, err := initDatabase()
	if err != nil {
		return err
	}

	app.Cache = db.NewCachedSource(database, db.CacheTTL{
		Locations: app.Cfg.Cache.Locations,
		Positions: app.Cfg.Cache.Positions,
		Users:     app.Cfg.Cache.Users,
		Shifts:    app.Cfg.Cache.Shifts,
	}, logger)
	app.Database = app.Cache

	if app.Accounts == nil {
		app.Accounts = auth.NewRosterDirectory(app.Cache, app.Cfg.AdminEmails)
	}

	backend, err := initBackend()
	if err != nil {
		return err
	}
	app.Drafts = store.NewDraftStore(backend, logger)
	app.Availability = store.NewAvailabilityStore(backend, logger)
	app.TimeOff = store.NewTimeOffStore(backend, logger)
	app.Session = auth.NewSession(backend, logger)

	app.Drafts.Subscribe(func(drafts []model.Shift) {
		logger.Debug("Drafts changed", zap.Int("count", len(drafts)))
	})

	rules := make([]calendar.ClosureRule, len(app.Cfg.Closures))
	for i, c := range app.Cfg.Closures {
		rules[i] = calendar.ClosureRule{Name: c.Name, RRule: c.RRule, Start: c.Start}
	}
	app.Closures, err = calendar.ParseClosures(rules)
	if err != nil {
		return fmt.Errorf("failed to parse closures: %w", err)
	}

	logger.Debug("Application initialized")
	return nil
}

// initGoogle authorises once and shares the token between the sheets and
// gmail clients
func initGoogle() error {
	logger := app.Logger

	logger.Debug("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return fmt.Errorf("failed to build OAuth config: %w", err)
	}

	tokens, err := utils.NewTokenManager(oauthConfig, env, logger)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	token, err := tokens.Token(app.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get OAuth token: %w", err)
	}

	logger.Debug("Initializing sheets client")
	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, oauthConfig, token)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	if app.Cfg.Notifications.Enabled {
		logger.Debug("Initializing gmail client")
		app.GmailClient, err = gmailclient.NewClient(app.Ctx, oauthConfig, token, app.Cfg.Notifications.GmailSender)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
	}

	return nil
}

func initDatabase() (db.Database, error) {
	logger := app.Logger

	switch app.Cfg.DataSource {
	case config.SourcePostgres:
		if err := openPostgres(); err != nil {
			return nil, err
		}
		app.Seeder = pg
		return pg, nil

	case config.SourceSheets:
		logger.Debug("Initializing database schema")
		schema, err := sheetssql.SchemaFromModels(db.Models()...)
		if err != nil {
			return nil, fmt.Errorf("failed to create database schema: %w", err)
		}

		logger.Info("Connecting to database", zap.String("spreadsheet_id", app.Cfg.DatabaseSheetID))
		ssqlDB, err := sheetssql.NewDB(app.SheetsClient, app.Cfg.DatabaseSheetID, schema)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		var opts []db.Option
		if app.Cfg.RosterSheetID != "" {
			opts = append(opts, db.WithRoster(app.SheetsClient, app.Cfg.RosterSheetID, app.Cfg.RosterTab))
		}
		sheetsDB := db.NewDB(ssqlDB, logger, opts...)
		app.Seeder = sheetsDB
		return sheetsDB, nil
	}

	logger.Debug("Using generated mock data", zap.Int64("seed", app.Cfg.MockSeed))
	app.Accounts = mockdata.Accounts{}
	return mockdata.NewSource(app.Cfg.MockSeed, app.Hours()), nil
}

func openPostgres() error {
	if pg != nil {
		return nil
	}

	var err error
	app.Logger.Info("Connecting to postgres")
	pg, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return err
	}
	if err := pg.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func initBackend() (store.Backend, error) {
	if app.Cfg.StorageBackend == config.StoragePostgres {
		if err := openPostgres(); err != nil {
			return nil, err
		}
		return pg.ClientStorage(), nil
	}

	backend, err := store.NewFileBackend(app.Cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}
	return backend, nil
}
