package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Defaults()
	return &cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_DataSourceRequirements(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"mock needs nothing", func(c *Config) {}, false},
		{"postgres without url", func(c *Config) { c.DataSource = SourcePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.DataSource = SourcePostgres
			c.DatabaseURL = "postgres://localhost/swiftshift"
		}, false},
		{"sheets without sheet id", func(c *Config) { c.DataSource = SourceSheets }, true},
		{"sheets with sheet id", func(c *Config) {
			c.DataSource = SourceSheets
			c.DatabaseSheetID = "db789"
		}, false},
		{"unknown source", func(c *Config) { c.DataSource = "excel" }, true},
		{"postgres storage without url", func(c *Config) { c.StorageBackend = StoragePostgres }, true},
		{"roster sheet without tab", func(c *Config) { c.RosterSheetID = "roster" }, true},
		{"notifications without sender", func(c *Config) { c.Notifications.Enabled = true }, true},
		{"notifications with sender", func(c *Config) {
			c.Notifications = Notifications{Enabled: true, GmailSender: "admin@example.com"}
		}, false},
		{"close before open", func(c *Config) { c.Schedule.CloseHour = 13 }, true},
		{"zero slot", func(c *Config) { c.Schedule.SlotMinutes = 0 }, true},
		{"autofill without tutors", func(c *Config) { c.Autofill.PerLocation = 0 }, true},
		{"autofill past a week", func(c *Config) { c.Autofill.MaxDaysPerTutor = 8 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "validation failed")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Closures(t *testing.T) {
	cfg := validConfig()
	cfg.Closures = []Closure{
		{Name: "Christmas", RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Start: "2024-12-25"},
	}
	assert.NoError(t, Validate(cfg))

	cfg.Closures = append(cfg.Closures, Closure{RRule: "INVALID_RRULE", Start: "2025-01-01"})
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in closures[1]")

	cfg.Closures = []Closure{{RRule: "FREQ=WEEKLY", Start: "01/01/2025"}}
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestNeedsGoogle(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.NeedsGoogle())

	cfg.PublishSheetID = "pub"
	assert.True(t, cfg.NeedsGoogle())

	cfg = validConfig()
	cfg.DataSource = SourceSheets
	assert.True(t, cfg.NeedsGoogle())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swiftshift_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	path := writeConfig(t, `
dataSource: postgres
databaseURL: "postgres://localhost:5432/swiftshift"
storageBackend: postgres
storageDir: /tmp/swiftshift
mockSeed: 42
schedule:
  openHour: 13
  closeHour: 20
  lastDayCloseHour: 17
  slotMinutes: 15
  stepMinutes: 15
  stepWidthPx: 60
  labelWidthPx: 180
  minStepWidthPx: 30
  strictUserScope: true
cache:
  users: 30s
  shifts: 1m
notifications:
  enabled: true
  gmailSender: admin@example.com
closures:
  - name: Christmas
    rrule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"
    start: "2024-12-25"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, SourcePostgres, cfg.DataSource)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, int64(42), cfg.MockSeed)
	assert.Equal(t, 13, cfg.Schedule.OpenHour)
	assert.Equal(t, 17, cfg.Schedule.LastDayCloseHour)
	assert.True(t, cfg.Schedule.StrictUserScope)
	assert.Equal(t, 30*time.Second, cfg.Cache.Users)
	assert.Equal(t, time.Minute, cfg.Cache.Shifts)
	// unset durations keep their defaults
	assert.Equal(t, time.Hour, cfg.Cache.Locations)
	require.Len(t, cfg.Closures, 1)
	assert.Equal(t, "Christmas", cfg.Closures[0].Name)
}

func TestLoadFromPath_MinimalConfig(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "dataSource: mock\n"))
	require.NoError(t, err)

	assert.Equal(t, Defaults().Schedule, cfg.Schedule)
	assert.Equal(t, Defaults().Autofill, cfg.Autofill)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Empty(t, cfg.Closures)
}

func TestLoadFromPath_MissingRequiredField(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "dataSource: sheets\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "dataSource: \"mock\"\n  invalid indentation\nstorageDir: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadWithEnv_FindsEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	require.NoError(t, os.WriteFile("swiftshift_config.test.yaml", []byte("dataSource: mock\nmockSeed: 7\n"), 0644))

	cfg, err := LoadWithEnv("test")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.MockSeed)

	_, err = LoadWithEnv("prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "swiftshift_config.prod.yaml not found")
}
