// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"booking-sync-service/pkg/utils"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned when Google OAuth credentials are not configured
var ErrMissingCredentials = errors.New("missing Google OAuth credentials")

// Mail and calendar backends
const (
	MailBackendGmail = "gmail"
	MailBackendIMAP  = "imap"

	CalendarBackendGoogle = "google"
	CalendarBackendICS    = "ics"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Postgres
	PostgresDSN string

	// Redis
	RedisAddress     string
	RedisPassword    string
	ReconcileLockTTL time.Duration

	// Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	// Mail
	MailBackend    string
	IMAPAddress    string
	IMAPUsername   string
	IMAPPassword   string
	IMAPMailbox    string
	MailSender     string
	MailFetchLimit int

	// Calendar
	CalendarBackend      string
	CalendarID           string
	ICSPath              string
	CalendarTimezone     string
	PruneDuplicateEvents bool

	// GenAI
	GenAIAPIKey string
	GenAIModel  string

	// Notification
	NotifyURL     string
	NotifyTimeout time.Duration

	// Scheduling
	PollInterval time.Duration
	RunOnce      bool
}

// GoogleCredentials holds the OAuth client and refresh token
type GoogleCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "booking_sync"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		ReconcileLockTTL: time.Duration(getEnvAsInt("RECONCILE_LOCK_TTL", 300)) * time.Second,

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		MailBackend:    strings.ToLower(getEnv("MAIL_BACKEND", MailBackendGmail)),
		IMAPAddress:    getEnv("IMAP_ADDRESS", ""),
		IMAPUsername:   getEnv("IMAP_USERNAME", ""),
		IMAPPassword:   getEnv("IMAP_PASSWORD", ""),
		IMAPMailbox:    getEnv("IMAP_MAILBOX", "INBOX"),
		MailSender:     getEnv("MAIL_SENDER", utils.DefaultMailSender),
		MailFetchLimit: getEnvAsInt("MAIL_FETCH_LIMIT", utils.DefaultFetchLimit),

		CalendarBackend:      strings.ToLower(getEnv("CALENDAR_BACKEND", CalendarBackendGoogle)),
		CalendarID:           getEnv("CALENDAR_ID", utils.DefaultCalendarID),
		ICSPath:              getEnv("ICS_PATH", "bookings.ics"),
		CalendarTimezone:     getEnv("CALENDAR_TIMEZONE", utils.DefaultTimezone),
		PruneDuplicateEvents: getEnvAsBool("PRUNE_DUPLICATE_EVENTS", false),

		GenAIAPIKey: getEnv("GENAI_API_KEY", ""),
		GenAIModel:  getEnv("GENAI_MODEL", "gemini-2.5-flash"),

		NotifyURL:     getEnv("NOTIFY_URL", "http://localhost:3000/api/events"),
		NotifyTimeout: time.Duration(getEnvAsInt("NOTIFY_TIMEOUT", 30)) * time.Second,

		PollInterval: time.Duration(getEnvAsInt("POLL_INTERVAL", 3600)) * time.Second,
		RunOnce:      getEnvAsBool("RUN_ONCE", false),
	}

	if config.MailFetchLimit <= 0 {
		config.MailFetchLimit = utils.DefaultFetchLimit
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}

	switch config.MailBackend {
	case MailBackendGmail, MailBackendIMAP:
	default:
		return nil, fmt.Errorf("unsupported MAIL_BACKEND %q", config.MailBackend)
	}
	switch config.CalendarBackend {
	case CalendarBackendGoogle, CalendarBackendICS:
	default:
		return nil, fmt.Errorf("unsupported CALENDAR_BACKEND %q", config.CalendarBackend)
	}

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

// Location resolves the configured calendar time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.CalendarTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEZONE %q: %w", c.CalendarTimezone, err)
	}
	return loc, nil
}

// GoogleCredentials returns the OAuth credentials or ErrMissingCredentials
func (c *Config) GoogleCredentials() (GoogleCredentials, error) {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.GoogleRefreshToken == "" {
		missing = append(missing, "GOOGLE_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return GoogleCredentials{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	return GoogleCredentials{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RefreshToken: c.GoogleRefreshToken,
	}, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
