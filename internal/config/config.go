package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Inventory source kinds.
const (
	SourceMemory = "memory"
	SourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Inventory InventoryConfig
	Sheets    SheetsConfig
	Logistics LogisticsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// InventoryConfig selects where inventory rows come from.
type InventoryConfig struct {
	Source   string
	SeedDemo bool
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	InventoryRange  string
}

// LogisticsConfig holds the default transport parameters applied at start-up.
type LogisticsConfig struct {
	DistanceKm float64
	RatePerKm  float64
}

// ReportingConfig holds scheduler-related settings. An empty schedule (REPORT_CRON_SCHEDULE=off) disables it.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for MongoDB. An empty URI disables snapshots.
type MongoDBConfig struct {
	URI                string
	DBName             string
	SnapshotCollection string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API notifier.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
}

// Enabled reports whether notifications should be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != ""
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	distance, err := getenvFloat("TRANSPORT_DISTANCE_KM", 120)
	if err != nil {
		return nil, err
	}
	rate, err := getenvFloat("TRANSPORT_RATE_PER_KM", 3.5)
	if err != nil {
		return nil, err
	}
	seed, err := getenvBool("INVENTORY_SEED_DEMO", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Inventory: InventoryConfig{
			Source:   strings.ToLower(getenvWithDefault("INVENTORY_SOURCE", SourceMemory)),
			SeedDemo: seed,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			InventoryRange:  getenvWithDefault("GOOGLE_SHEET_INVENTORY_RANGE", "Inventory!A:E"),
		},
		Logistics: LogisticsConfig{
			DistanceKm: distance,
			RatePerKm:  rate,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Europe/Warsaw"),
		},
		MongoDB: MongoDBConfig{
			URI:                os.Getenv("MONGODB_URI"),
			DBName:             getenvWithDefault("MONGODB_DB_NAME", "logistics"),
			SnapshotCollection: getenvWithDefault("MONGODB_SNAPSHOT_COLLECTION", "cost_snapshots"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipient: os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
		},
	}

	if strings.EqualFold(cfg.Reporting.CronSchedule, "off") {
		cfg.Reporting.CronSchedule = ""
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

	switch c.Inventory.Source {
	case SourceMemory:
	case SourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
		if c.Sheets.InventoryRange == "" {
			return errors.New("GOOGLE_SHEET_INVENTORY_RANGE must not be empty")
		}
	default:
		return fmt.Errorf("INVENTORY_SOURCE must be %q or %q, got %q", SourceMemory, SourceSheets, c.Inventory.Source)
	}

	if c.Logistics.DistanceKm < 0 {
		return errors.New("TRANSPORT_DISTANCE_KM must not be negative")
	}
	if c.Logistics.RatePerKm < 0 {
		return errors.New("TRANSPORT_RATE_PER_KM must not be negative")
	}

	if c.Reporting.CronSchedule != "" {
		if c.Reporting.Timezone == "" {
			return errors.New("TIMEZONE must be provided")
		}
		if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE is invalid: %w", err)
		}
	}

	if c.MongoDB.URI != "" {
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
		if c.MongoDB.SnapshotCollection == "" {
			return errors.New("MONGODB_SNAPSHOT_COLLECTION must not be empty")
		}
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.ReportRecipient == "":
			return errors.New("WHATSAPP_REPORT_RECIPIENT must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
