package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Serial strategies accepted by SIM_SERIAL_STRATEGY.
const (
	SerialSequence = "sequence"
	SerialUUID     = "uuid"
)

// Hazard modes accepted by SIM_HAZARDS.
const (
	HazardsDeterministic = "deterministic"
	HazardsNone          = "none"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Metrics    MetricsConfig
	WhatsApp   WhatsAppConfig
	Sheets     SheetsConfig
	Scheduler  SchedulerConfig
	MongoDB    MongoDBConfig
	Simulation SimulationConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the minimum zap level.
type LogConfig struct {
	Level string
}

// MetricsConfig toggles the Prometheus exporter on /metrics.
type MetricsConfig struct {
	Enabled bool
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used to
// reach the fleet manager. Messaging is disabled when the token or phone
// number id is missing.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	VerifyToken    string
	BaseURL        string
	APIVersion     string
	FleetManagerID string
}

// Enabled reports whether outbound messaging can be used.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig points at the spreadsheet holding the operations ledger.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	LedgerTab       string
}

// Enabled reports whether the ledger spreadsheet is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// SchedulerConfig holds cron expressions for the background jobs.
type SchedulerConfig struct {
	SnapshotSchedule string
	ReportSchedule   string
	Timezone         string
}

// Location resolves Timezone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// MongoDBConfig holds settings for the snapshot store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SimulationConfig shapes the equipment environment. CurrentYear 0 follows
// the wall clock.
type SimulationConfig struct {
	MinYear        int
	CurrentYear    int
	SerialStrategy string
	Hazards        string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	minYear, err := getenvInt("SIM_MIN_YEAR", 1950)
	if err != nil {
		return nil, err
	}
	currentYear, err := getenvInt("SIM_CURRENT_YEAR", 0)
	if err != nil {
		return nil, err
	}
	metricsEnabled, err := getenvBool("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Enabled: metricsEnabled,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:    os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			FleetManagerID: os.Getenv("WHATSAPP_FLEET_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			LedgerTab:       getenvWithDefault("GOOGLE_SHEET_LEDGER_TAB", "Ledger"),
		},
		Scheduler: SchedulerConfig{
			SnapshotSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 2 * * *"),
			ReportSchedule:   getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:         getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "agrifleet"),
		},
		Simulation: SimulationConfig{
			MinYear:        minYear,
			CurrentYear:    currentYear,
			SerialStrategy: getenvWithDefault("SIM_SERIAL_STRATEGY", SerialSequence),
			Hazards:        getenvWithDefault("SIM_HAZARDS", HazardsDeterministic),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must not be empty")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		case c.WhatsApp.FleetManagerID == "":
			return errors.New("WHATSAPP_FLEET_MANAGER_ID must be provided when messaging is enabled")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}
	if c.Sheets.LedgerTab == "" || strings.ContainsAny(c.Sheets.LedgerTab, "!'") {
		return errors.New("GOOGLE_SHEET_LEDGER_TAB must be a plain sheet name")
	}

	if c.Scheduler.SnapshotSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}
	if c.Scheduler.ReportSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	sim := c.Simulation
	if sim.MinYear <= 0 {
		return errors.New("SIM_MIN_YEAR must be positive")
	}
	if sim.CurrentYear != 0 && sim.CurrentYear < sim.MinYear {
		return fmt.Errorf("SIM_CURRENT_YEAR %d is before SIM_MIN_YEAR %d", sim.CurrentYear, sim.MinYear)
	}
	switch sim.SerialStrategy {
	case SerialSequence, SerialUUID:
	default:
		return fmt.Errorf("SIM_SERIAL_STRATEGY must be %q or %q, got %q", SerialSequence, SerialUUID, sim.SerialStrategy)
	}
	switch sim.Hazards {
	case HazardsDeterministic, HazardsNone:
	default:
		return fmt.Errorf("SIM_HAZARDS must be %q or %q, got %q", HazardsDeterministic, HazardsNone, sim.Hazards)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
