// Package config loads the monitor configuration from the environment.
//
// Values come from process environment variables, optionally seeded from a .env file.
// Command-line flags may override individual values before Validate is called.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvBotToken        = "TELEGRAM_BOT_TOKEN"
	EnvPrivateChatID   = "TELEGRAM_CHAT_ID"
	EnvBroadcastChatID = "TELEGRAM_CHANNEL_ID"
	EnvIntervalMinutes = "INTERVALO_MINUTOS"
	EnvCheckMode       = "CHECK_MODE"
	EnvTargetURL       = "TARGET_URL"
	EnvBlockedMarker   = "BLOCKED_MARKER"
	EnvChromePath      = "CHROME_PATH"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvStatusAddr      = "STATUS_ADDR"

	EnvTwitterAPIKey       = "TWITTER_API_KEY"
	EnvTwitterAPISecret    = "TWITTER_API_SECRET"
	EnvTwitterAccessToken  = "TWITTER_ACCESS_TOKEN"
	EnvTwitterAccessSecret = "TWITTER_ACCESS_SECRET"
)

const (
	DefaultTargetURL         = "https://titulosvalidez.educacion.gob.ar/validez/detitulos/index.php"
	DefaultBlockedMarker     = "noaccess.php"
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultEnvFile           = ".env"

	ModeBrowser = "browser"
	ModeHTTP    = "http"
)

// Config holds all runtime settings
type Config struct {
	BotToken        string
	PrivateChatID   string
	BroadcastChatID string
	Interval        time.Duration

	CheckMode         string
	TargetURL         string
	BlockedMarker     string
	ChromePath        string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration

	LogLevel   string
	LogFormat  string
	StatusAddr string

	Twitter TwitterCredentials
}

// TwitterCredentials holds the optional OAuth1 credentials for the broadcast mirror
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Enabled reports whether every credential is present
func (t TwitterCredentials) Enabled() bool {
	return t.APIKey != "" && t.APISecret != "" && t.AccessToken != "" && t.AccessSecret != ""
}

// LoadDotEnv loads variables from an env file without overriding the process environment.
// A missing default file is not an error; a missing explicitly named file is.
func LoadDotEnv(path string, explicit bool) error {
	if path == "" {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

// FromEnv builds a Config from environment variables. It only fails on malformed
// values; missing required values are reported by Validate.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BotToken:          getEnv(EnvBotToken, ""),
		PrivateChatID:     getEnv(EnvPrivateChatID, ""),
		BroadcastChatID:   getEnv(EnvBroadcastChatID, ""),
		CheckMode:         getEnv(EnvCheckMode, ModeBrowser),
		TargetURL:         getEnv(EnvTargetURL, DefaultTargetURL),
		BlockedMarker:     getEnv(EnvBlockedMarker, DefaultBlockedMarker),
		ChromePath:        getEnv(EnvChromePath, ""),
		NavigationTimeout: DefaultNavigationTimeout,
		SettleDelay:       DefaultSettleDelay,
		LogLevel:          getEnv(EnvLogLevel, "INFO"),
		LogFormat:         getEnv(EnvLogFormat, "text"),
		StatusAddr:        getEnv(EnvStatusAddr, ""),
		Twitter: TwitterCredentials{
			APIKey:       getEnv(EnvTwitterAPIKey, ""),
			APISecret:    getEnv(EnvTwitterAPISecret, ""),
			AccessToken:  getEnv(EnvTwitterAccessToken, ""),
			AccessSecret: getEnv(EnvTwitterAccessSecret, ""),
		},
	}

	if raw := getEnv(EnvIntervalMinutes, ""); raw != "" {
		interval, err := ParseIntervalMinutes(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvIntervalMinutes, err)
		}
		cfg.Interval = interval
	}

	return cfg, nil
}

// ParseIntervalMinutes converts a minutes value such as "5" or "0.5" into a duration
func ParseIntervalMinutes(raw string) (time.Duration, error) {
	minutes, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: must be a number of minutes", raw)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("invalid interval %q: must be greater than zero", raw)
	}
	return time.Duration(minutes * float64(time.Minute)), nil
}

// Validate reports every missing required variable at once, then checks value ranges
func (c *Config) Validate() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, EnvBotToken)
	}
	if c.PrivateChatID == "" {
		missing = append(missing, EnvPrivateChatID)
	}
	if c.BroadcastChatID == "" {
		missing = append(missing, EnvBroadcastChatID)
	}
	if c.Interval <= 0 {
		missing = append(missing, EnvIntervalMinutes)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Interval < time.Second {
		return fmt.Errorf("interval %v is below the one second minimum", c.Interval)
	}

	switch c.CheckMode {
	case ModeBrowser, ModeHTTP:
	default:
		return fmt.Errorf("invalid check mode: %s (must be '%s' or '%s')", c.CheckMode, ModeBrowser, ModeHTTP)
	}

	if c.TargetURL == "" {
		return fmt.Errorf("target URL must not be empty")
	}
	if c.BlockedMarker == "" {
		return fmt.Errorf("blocked marker must not be empty")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
