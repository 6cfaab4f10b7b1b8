// Package config loads runtime settings from the environment and an optional .env file.
// File: config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-andiamo/splitter"
	"github.com/joho/godotenv"
	"go-drop-registry/logger"
)

// store backends
const (
	BackendMemory    = "memory"
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
)

// Config holds every setting the server needs.
type Config struct {
	Env            string
	HTTPAddr       string
	ApplicationURL string
	AllowedOrigins []string

	SessionSecret string
	SecureCookies bool

	// admin identity
	AdminEmails       []string
	AdminPassword     string
	AdminPasswordHash string

	// identity provider tokens
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// document store
	StoreBackend       string
	MongoURI           string
	MongoDatabase      string
	FirestoreProject   string
	GoogleCredentials  string
	StatusPollInterval time.Duration

	TimeZone *time.Location

	SubmitRatePerMinute int
	SubmitBurst         int

	// notifications
	TelegramToken   string
	TelegramChatIDs []int64
	DiscordToken    string
	DiscordChannel  string

	// exports
	SheetsSpreadsheetID string

	// observability
	CloudWatchEnabled bool
	XRayEnabled       bool
	XRayName          string
}

// defaultSessionSecret signs cookies outside production only.
const defaultSessionSecret = "change-me"

// Load reads .env (if present) and the environment. It fails on values that
// cannot be parsed or combinations that cannot work.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("Load: no .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		ApplicationURL:      strings.TrimRight(getEnv("APPLICATION_URL", "http://localhost:8080"), "/"),
		SessionSecret:       getEnv("SESSION_SECRET", defaultSessionSecret),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTIssuer:           os.Getenv("JWT_ISSUER"),
		JWTAudience:         os.Getenv("JWT_AUDIENCE"),
		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "drops"),
		FirestoreProject:    os.Getenv("FIRESTORE_PROJECT_ID"),
		GoogleCredentials:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		TelegramToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		DiscordToken:        os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordChannel:      os.Getenv("DISCORD_CHANNEL_ID"),
		SheetsSpreadsheetID: os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		XRayName:            getEnv("XRAY_SEGMENT_NAME", "drop-registry"),
	}

	var err error
	if c.AdminEmails, err = parseList(os.Getenv("ADMIN_EMAILS")); err != nil {
		return nil, fmt.Errorf("ADMIN_EMAILS: %w", err)
	}
	for i, e := range c.AdminEmails {
		c.AdminEmails[i] = strings.ToLower(e)
	}
	if c.AllowedOrigins, err = parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")); err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}

	chatIDs, err := parseList(os.Getenv("TELEGRAM_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_CHAT_IDS: %w", err)
	}
	for _, raw := range chatIDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_IDS: invalid chat id %q: %w", raw, err)
		}
		c.TelegramChatIDs = append(c.TelegramChatIDs, id)
	}

	if c.TimeZone, err = time.LoadLocation(getEnv("EVENT_TIMEZONE", "Asia/Kolkata")); err != nil {
		return nil, fmt.Errorf("EVENT_TIMEZONE: %w", err)
	}
	if c.StatusPollInterval, err = time.ParseDuration(getEnv("STATUS_POLL_INTERVAL", "2s")); err != nil {
		return nil, fmt.Errorf("STATUS_POLL_INTERVAL: %w", err)
	}
	if c.SubmitRatePerMinute, err = getInt("SUBMIT_RATE_PER_MINUTE", 6); err != nil {
		return nil, err
	}
	if c.SubmitBurst, err = getInt("SUBMIT_BURST", 3); err != nil {
		return nil, err
	}
	if c.SecureCookies, err = getBool("SECURE_COOKIES", false); err != nil {
		return nil, err
	}
	if c.CloudWatchEnabled, err = getBool("CLOUDWATCH_ENABLED", false); err != nil {
		return nil, err
	}
	if c.XRayEnabled, err = getBool("XRAY_ENABLED", false); err != nil {
		return nil, err
	}

	if c.Env == "production" && c.SessionSecret == defaultSessionSecret {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	switch c.StoreBackend {
	case BackendMemory, BackendMongo:
	case BackendFirestore:
		if c.FirestoreProject == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND: unknown backend %q", c.StoreBackend)
	}

	return c, nil
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// ---------------- helpers ----------------

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// parseList splits a comma separated value. Entries may be double-quoted.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	commaSplitter, err := splitter.NewSplitter(',', splitter.DoubleQuotes)
	if err != nil {
		return nil, err
	}
	parts, err := commaSplitter.Split(raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
