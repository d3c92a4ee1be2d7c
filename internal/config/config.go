package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Data source kinds
const (
	SourceMock     = "mock"
	SourcePostgres = "postgres"
	SourceSheets   = "sheets"
)

// Client storage backends
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// ScheduleConfig tunes opening hours and grid geometry
type ScheduleConfig struct {
	OpenHour         int     `yaml:"openHour" validate:"min=0,max=23"`
	CloseHour        int     `yaml:"closeHour" validate:"gtfield=OpenHour,max=24"`
	LastDayCloseHour int     `yaml:"lastDayCloseHour" validate:"gtfield=OpenHour,max=24"`
	SlotMinutes      int     `yaml:"slotMinutes" validate:"min=5,max=120"`
	StepMinutes      int     `yaml:"stepMinutes" validate:"min=5,max=120"`
	StepWidthPx      float64 `yaml:"stepWidthPx" validate:"gt=0"`
	LabelWidthPx     float64 `yaml:"labelWidthPx" validate:"gte=0"`
	MinStepWidthPx   float64 `yaml:"minStepWidthPx" validate:"gt=0"`
	StrictUserScope  bool    `yaml:"strictUserScope,omitempty"`
}

// CacheConfig sets how long fetched data stays fresh
type CacheConfig struct {
	Locations time.Duration `yaml:"locations"`
	Positions time.Duration `yaml:"positions"`
	Users     time.Duration `yaml:"users"`
	Shifts    time.Duration `yaml:"shifts"`
}

// Notifications configures time-off decision emails
type Notifications struct {
	Enabled     bool   `yaml:"enabled"`
	GmailSender string `yaml:"gmailSender,omitempty" validate:"required_if=Enabled true"`
}

// AutofillConfig sets how many tutors the week filler aims for
type AutofillConfig struct {
	PerLocation     int `yaml:"perLocation" validate:"min=1"`
	MaxDaysPerTutor int `yaml:"maxDaysPerTutor" validate:"min=1,max=7"`
}

// Closure is a recurring day the centre is shut
type Closure struct {
	Name  string `yaml:"name,omitempty"`
	RRule string `yaml:"rrule" validate:"required"`
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
}

// Config represents the application configuration
type Config struct {
	DataSource      string         `yaml:"dataSource" validate:"required,oneof=mock postgres sheets"`
	DatabaseURL     string         `yaml:"databaseURL,omitempty" validate:"required_if=DataSource postgres,required_if=StorageBackend postgres"`
	DatabaseSheetID string         `yaml:"databaseSheetID,omitempty" validate:"required_if=DataSource sheets"`
	RosterSheetID   string         `yaml:"rosterSheetID,omitempty"`
	RosterTab       string         `yaml:"rosterTab,omitempty" validate:"required_with=RosterSheetID"`
	PublishSheetID  string         `yaml:"publishSheetID,omitempty"`
	AdminEmails     []string       `yaml:"adminEmails,omitempty" validate:"dive,email"`
	StorageBackend  string         `yaml:"storageBackend" validate:"oneof=file postgres"`
	StorageDir      string         `yaml:"storageDir" validate:"required"`
	MockSeed        int64          `yaml:"mockSeed,omitempty"`
	Schedule        ScheduleConfig `yaml:"schedule"`
	Cache           CacheConfig    `yaml:"cache"`
	Notifications   Notifications  `yaml:"notifications"`
	Autofill        AutofillConfig `yaml:"autofill"`
	Closures        []Closure      `yaml:"closures,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Defaults returns the configuration used for any field a file leaves unset
func Defaults() Config {
	return Config{
		DataSource:     SourceMock,
		StorageBackend: StorageFile,
		StorageDir:     ".swiftshift",
		Schedule: ScheduleConfig{
			OpenHour:         14,
			CloseHour:        19,
			LastDayCloseHour: 18,
			SlotMinutes:      30,
			StepMinutes:      30,
			StepWidthPx:      80,
			LabelWidthPx:     220,
			MinStepWidthPx:   40,
		},
		Cache: CacheConfig{
			Locations: time.Hour,
			Positions: time.Hour,
			Users:     10 * time.Minute,
			Shifts:    5 * time.Minute,
		},
		Autofill: AutofillConfig{
			PerLocation:     2,
			MaxDaysPerTutor: 3,
		},
	}
}

// NeedsGoogle reports whether any configured feature talks to Google APIs
func (c *Config) NeedsGoogle() bool {
	return c.DataSource == SourceSheets || c.Notifications.Enabled || c.PublishSheetID != ""
}

// LoadWithEnv loads swiftshift_config.<env>.yaml, or swiftshift_config.yaml
// when env is empty
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads the configuration from path on top of Defaults and validates it
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks closure rrules
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	return nil
}

func findConfigFile(env string) (string, error) {
	if env == "" {
		return findFile("swiftshift_config.yaml")
	}
	return findFile("swiftshift_config." + env + ".yaml")
}
