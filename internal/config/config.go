// Package config loads site settings from a YAML file and NS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultNewsCountOnHomePage is the home page size.
const DefaultNewsCountOnHomePage = 10

// Database selects the SQL backend. An empty Driver means the JSON file
// store.
type Database struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// Settings is the full server configuration.
type Settings struct {
	Port                int           `yaml:"port"`
	DataFile            string        `yaml:"data_file"`
	Database            Database      `yaml:"database"`
	NewsCountOnHomePage int           `yaml:"news_count_on_home_page"`
	Secret              string        `yaml:"secret"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
	SecureCookies       bool          `yaml:"secure_cookies"`
	LoginRatePerMinute  int           `yaml:"login_rate_per_minute"`
	LogLevel            string        `yaml:"log_level"`
	LogFormat           string        `yaml:"log_format"`
	BadWords            []string      `yaml:"bad_words"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Port:                9999,
		DataFile:            "news.json",
		NewsCountOnHomePage: DefaultNewsCountOnHomePage,
		SessionTTL:          14 * 24 * time.Hour,
		LoginRatePerMinute:  30,
		LogFormat:           "text",
	}
}

// LoadFile reads YAML settings from path on top of Default. Keys absent
// from the file keep their defaults.
func LoadFile(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing config file: %w", err)
	}
	return s, nil
}

// ApplyEnv overrides settings from NS_* variables returned by getenv.
func (s *Settings) ApplyEnv(getenv func(string) string) error {
	if v := getenv("NS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NS_PORT: %w", err)
		}
		s.Port = p
	}
	if v := getenv("NS_DATA_FILE"); v != "" {
		s.DataFile = v
	}
	if v := getenv("NS_DATABASE_DRIVER"); v != "" {
		s.Database.Driver = v
	}
	if v := getenv("NS_DATABASE_URL"); v != "" {
		s.Database.URL = v
	}
	if v := getenv("NS_NEWS_COUNT_ON_HOME_PAGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NS_NEWS_COUNT_ON_HOME_PAGE: %w", err)
		}
		s.NewsCountOnHomePage = n
	}
	if v := getenv("NS_SECRET"); v != "" {
		s.Secret = v
	}
	if v := getenv("NS_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NS_SESSION_TTL: %w", err)
		}
		s.SessionTTL = d
	}
	if v := getenv("NS_SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid NS_SECURE_COOKIES: %w", err)
		}
		s.SecureCookies = b
	}
	if v := getenv("NS_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := getenv("NS_LOG_FORMAT"); v != "" {
		s.LogFormat = v
	}
	if v := getenv("NS_BAD_WORDS"); v != "" {
		var words []string
		for _, w := range strings.Split(v, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		s.BadWords = words
	}
	return nil
}

// Validate checks that the settings are usable by the server.
func (s Settings) Validate() error {
	var errs []error
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", s.Port))
	}
	if s.NewsCountOnHomePage < 1 {
		errs = append(errs, fmt.Errorf("news_count_on_home_page must be positive, got %d", s.NewsCountOnHomePage))
	}
	if s.Secret == "" {
		errs = append(errs, errors.New("secret is required"))
	}
	if s.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if s.LoginRatePerMinute < 0 {
		errs = append(errs, errors.New("login_rate_per_minute must not be negative"))
	}
	switch s.Database.Driver {
	case "":
		if s.DataFile == "" {
			errs = append(errs, errors.New("data_file must not be empty"))
		}
	case "pgx", "postgres", "mysql":
		if s.Database.URL == "" {
			errs = append(errs, fmt.Errorf("database.url is required for driver %q", s.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", s.Database.Driver))
	}
	switch s.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log_format %q", s.LogFormat))
	}
	return errors.Join(errs...)
}
