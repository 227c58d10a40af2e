// Package config loads and validates the pipeline configuration. API
// credentials come from the environment (optionally via a .env file) and
// are expanded into the YAML before parsing; a missing credential for an
// enabled source is a fatal startup error, raised before any I/O.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobradar pipeline.
type Config struct {
	DatabasePath string
	Cities       []string
	Roles        []string
	Sources      SourcesConfig
	Fetch        FetchConfig
	Housing      HousingConfig
}

// SourcesConfig holds per-upstream credentials and switches.
type SourcesConfig struct {
	Adzuna  AdzunaConfig
	JSearch JSearchConfig
}

type AdzunaConfig struct {
	Enabled bool
	AppID   string
	AppKey  string
}

type JSearchConfig struct {
	Enabled bool
	APIKey  string
}

// FetchConfig controls the pagination loops.
type FetchConfig struct {
	PerPage     int
	MaxPages    int
	PageDelay   time.Duration // courtesy wait between page requests
	HTTPTimeout time.Duration
}

// HousingConfig maps dataset names (zori, zhvi, ...) to CSV paths.
type HousingConfig struct {
	Datasets map[string]string
}

// rawConfig mirrors the YAML layout (snake_case, durations as strings).
type rawConfig struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Cities  []string `yaml:"cities"`
	Roles   []string `yaml:"roles"`
	Sources struct {
		Adzuna struct {
			Enabled bool   `yaml:"enabled"`
			AppID   string `yaml:"app_id"`
			AppKey  string `yaml:"app_key"`
		} `yaml:"adzuna"`
		JSearch struct {
			Enabled bool   `yaml:"enabled"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"jsearch"`
	} `yaml:"sources"`
	Fetch struct {
		PerPage     int    `yaml:"per_page"`
		MaxPages    int    `yaml:"max_pages"`
		PageDelay   string `yaml:"page_delay"`
		HTTPTimeout string `yaml:"http_timeout"`
	} `yaml:"fetch"`
	Housing struct {
		Datasets map[string]string `yaml:"datasets"`
	} `yaml:"housing"`
}

// Load reads the YAML config at path, expands environment variables,
// applies defaults and validates. A .env file next to the working directory
// is folded into the environment first when present.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pageDelay := 500 * time.Millisecond
	if raw.Fetch.PageDelay != "" {
		pageDelay, err = time.ParseDuration(raw.Fetch.PageDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.page_delay %q: %w", raw.Fetch.PageDelay, err)
		}
	}

	httpTimeout := 30 * time.Second
	if raw.Fetch.HTTPTimeout != "" {
		httpTimeout, err = time.ParseDuration(raw.Fetch.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.http_timeout %q: %w", raw.Fetch.HTTPTimeout, err)
		}
	}

	dbPath := raw.Database.Path
	if dbPath == "" {
		dbPath = "jobradar.db"
	}

	perPage := raw.Fetch.PerPage
	if perPage == 0 {
		perPage = 50
	}
	maxPages := raw.Fetch.MaxPages
	if maxPages == 0 {
		maxPages = 20
	}

	cfg := &Config{
		DatabasePath: dbPath,
		Cities:       raw.Cities,
		Roles:        raw.Roles,
		Sources: SourcesConfig{
			Adzuna: AdzunaConfig{
				Enabled: raw.Sources.Adzuna.Enabled,
				AppID:   raw.Sources.Adzuna.AppID,
				AppKey:  raw.Sources.Adzuna.AppKey,
			},
			JSearch: JSearchConfig{
				Enabled: raw.Sources.JSearch.Enabled,
				APIKey:  raw.Sources.JSearch.APIKey,
			},
		},
		Fetch: FetchConfig{
			PerPage:     perPage,
			MaxPages:    maxPages,
			PageDelay:   pageDelay,
			HTTPTimeout: httpTimeout,
		},
		Housing: HousingConfig{Datasets: raw.Housing.Datasets},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if !cfg.Sources.Adzuna.Enabled && !cfg.Sources.JSearch.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}
	if cfg.Sources.Adzuna.Enabled {
		if cfg.Sources.Adzuna.AppID == "" || cfg.Sources.Adzuna.AppKey == "" {
			return fmt.Errorf("sources.adzuna.app_id and app_key are required when adzuna is enabled (set ADZUNA_APP_ID / ADZUNA_APP_KEY)")
		}
	}
	if cfg.Sources.JSearch.Enabled && cfg.Sources.JSearch.APIKey == "" {
		return fmt.Errorf("sources.jsearch.api_key is required when jsearch is enabled (set JSEARCH_API_KEY)")
	}
	if len(cfg.Cities) == 0 {
		return fmt.Errorf("at least one city must be configured")
	}
	if len(cfg.Roles) == 0 {
		return fmt.Errorf("at least one role must be configured")
	}
	if cfg.Fetch.PerPage < 1 {
		return fmt.Errorf("fetch.per_page must be positive, got %d", cfg.Fetch.PerPage)
	}
	if cfg.Fetch.MaxPages < 1 {
		return fmt.Errorf("fetch.max_pages must be positive, got %d", cfg.Fetch.MaxPages)
	}
	return nil
}
