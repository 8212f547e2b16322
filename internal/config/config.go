package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Afrawles/teampulse/internal/report"
)

type Config struct {
	Providers ProvidersConfig
	Spaces    SpacesConfig
	Output    OutputConfig
	Subjects  []string
	History   string
}

type ProvidersConfig struct {
	ChatURL     string
	GerritURL   string
	TrackerURL  string
	CalendarURL string
}

type SpacesConfig struct {
	Names       map[string]string
	DefaultName string
}

type OutputConfig struct {
	Directory string
	Format    []string // json, csv, xlsx
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Providers: ProvidersConfig{
			ChatURL:     os.Getenv("TEAMPULSE_CHAT_URL"),
			GerritURL:   os.Getenv("TEAMPULSE_GERRIT_URL"),
			TrackerURL:  os.Getenv("TEAMPULSE_TRACKER_URL"),
			CalendarURL: os.Getenv("TEAMPULSE_CALENDAR_URL"),
		},
		Spaces: SpacesConfig{
			Names:       parseNameMap(os.Getenv("TEAMPULSE_SPACE_NAMES")),
			DefaultName: getEnvOrDefault("TEAMPULSE_DEFAULT_SPACE", "General"),
		},
		Output: OutputConfig{
			Directory: getEnvOrDefault("OUTPUT_DIR", "reports"),
			Format:    strings.Split(getEnvOrDefault("OUTPUT_FORMAT", "json,xlsx"), ","),
		},
		History: getEnvOrDefault("TEAMPULSE_HISTORY_DB", "teampulse.db"),
	}

	if subjects := os.Getenv("TEAMPULSE_SUBJECTS"); subjects != "" {
		parts := strings.Split(subjects, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Subjects = parts
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Endpoints()) == 0 {
		return fmt.Errorf("no providers configured (set TEAMPULSE_CHAT_URL, TEAMPULSE_GERRIT_URL, TEAMPULSE_TRACKER_URL or TEAMPULSE_CALENDAR_URL)")
	}

	if len(c.Subjects) == 0 {
		return fmt.Errorf("no subjects configured (set TEAMPULSE_SUBJECTS or pass --subjects)")
	}

	return nil
}

// Endpoints maps each configured provider kind to its base URL. Providers
// without a URL are simply absent; a report needing them records them as
// failed rather than refusing to run.
func (c *Config) Endpoints() map[report.Kind]string {
	endpoints := make(map[report.Kind]string)
	if c.Providers.ChatURL != "" {
		endpoints[report.KindChat] = c.Providers.ChatURL
	}
	if c.Providers.GerritURL != "" {
		endpoints[report.KindGerrit] = c.Providers.GerritURL
	}
	if c.Providers.TrackerURL != "" {
		endpoints[report.KindTracker] = c.Providers.TrackerURL
	}
	if c.Providers.CalendarURL != "" {
		endpoints[report.KindCalendar] = c.Providers.CalendarURL
	}
	return endpoints
}

func (c *Config) NameContext() report.NameContext {
	return report.NameContext{
		SpaceNames:       c.Spaces.Names,
		DefaultSpaceName: c.Spaces.DefaultName,
	}
}

// parseNameMap reads "id=Name,id2=Other Name" pairs.
func parseNameMap(raw string) map[string]string {
	names := make(map[string]string)
	if raw == "" {
		return names
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		id := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if id != "" && name != "" {
			names[id] = name
		}
	}
	return names
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
