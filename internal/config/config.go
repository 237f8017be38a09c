package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// defaultStations is the shop floor as configured at the pilot site.
var defaultStations = []string{
	"Cutting",
	"Edging",
	"Press",
	"CNC",
	"Advertising",
	"Assembly",
	"Painting",
	"Metal",
	"Powder coating",
	"Glass",
	"Packaging",
}

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Telegram  TelegramConfig
	Storage   StorageConfig
	Stations  StationsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// TelegramConfig contains credentials for the two Bot API surfaces.
type TelegramConfig struct {
	EntryBotToken   string
	AnalystBotToken string
	BaseURL         string
	WebhookSecret   string
}

// StorageConfig locates the workshop SQLite database.
type StorageConfig struct {
	SQLitePath string
}

// StationsConfig enumerates the workshop stations.
type StationsConfig struct {
	Names            []string
	PackagingStation string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule     string
	Timezone         string
	SupervisorChatID int64
}

// MongoDBConfig holds settings for the daily report archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig configures the optional spreadsheet export. Both fields empty
// disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
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
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	supervisorChat, err := parseOptionalInt64(os.Getenv("SUPERVISOR_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("SUPERVISOR_CHAT_ID must be a chat id: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Telegram: TelegramConfig{
			EntryBotToken:   os.Getenv("ENTRY_BOT_TOKEN"),
			AnalystBotToken: os.Getenv("ANALYST_BOT_TOKEN"),
			BaseURL:         getenvWithDefault("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			WebhookSecret:   os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},
		Storage: StorageConfig{
			SQLitePath: getenvWithDefault("SQLITE_PATH", "workshop_data.db"),
		},
		Stations: StationsConfig{
			Names:            splitList(getenvWithDefault("STATIONS", strings.Join(defaultStations, ","))),
			PackagingStation: getenvWithDefault("PACKAGING_STATION", "Packaging"),
		},
		Reporting: ReportingConfig{
			CronSchedule:     getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:         getenvWithDefault("TIMEZONE", "Europe/Moscow"),
			SupervisorChatID: supervisorChat,
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "workshoptrack"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
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

	switch {
	case c.Telegram.EntryBotToken == "":
		return errors.New("ENTRY_BOT_TOKEN must be provided")
	case c.Telegram.AnalystBotToken == "":
		return errors.New("ANALYST_BOT_TOKEN must be provided")
	case c.Telegram.BaseURL == "":
		return errors.New("TELEGRAM_BASE_URL must not be empty")
	}

	if c.Storage.SQLitePath == "" {
		return errors.New("SQLITE_PATH must be provided")
	}

	if len(c.Stations.Names) == 0 {
		return errors.New("STATIONS must name at least one station")
	}

	packagingKnown := false
	for _, name := range c.Stations.Names {
		if name == c.Stations.PackagingStation {
			packagingKnown = true
			break
		}
	}
	if !packagingKnown {
		return fmt.Errorf("PACKAGING_STATION %q is not in STATIONS", c.Stations.PackagingStation)
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_EXPORT_ID must be provided when sheets credentials are set")
	}

	return nil
}

// SheetsEnabled reports whether the spreadsheet export should be wired.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseOptionalInt64(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
