package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	"github.com/ignaciocanosa/Precios-Relativos/service/api/hereisdata"
	"github.com/ignaciocanosa/Precios-Relativos/service/core"
)

const DefaultPath = "configs/config.yaml"

type SeriesEntry struct {
	Id   int32  `yaml:"id"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

// Config holds all application configuration.
type Config struct {
	HereIsData struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"hereisdata"`
	Server struct {
		Addr            string        `yaml:"addr"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		SessionTTL      time.Duration `yaml:"session_ttl"`
		SessionReapCron string        `yaml:"session_reap_cron"`
	} `yaml:"server"`
	Database struct {
		URL        string `yaml:"url"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Series []SeriesEntry `yaml:"series"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error, everything can come from the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HEREISDATA_API_KEY"); v != "" {
		cfg.HereIsData.APIKey = v
	}
	if v := os.Getenv("HEREISDATA_BASE_URL"); v != "" {
		cfg.HereIsData.BaseURL = v
	}
	if v := os.Getenv("HEREISDATA_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse HEREISDATA_TIMEOUT: %w", err)
		}
		cfg.HereIsData.Timeout = timeout
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.HereIsData.BaseURL == "" {
		cfg.HereIsData.BaseURL = hereisdata.BaseUrlDefault
	}
	if cfg.HereIsData.Timeout == 0 {
		cfg.HereIsData.Timeout = hereisdata.TimeoutDefault
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = core.DefaultAddr
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 2 * time.Hour
	}
	if cfg.Server.SessionReapCron == "" {
		cfg.Server.SessionReapCron = "@every 10m"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HereIsData.APIKey) == "" {
		return fmt.Errorf("hereisdata.api_key is required")
	}
	if c.HereIsData.Timeout < 0 {
		return fmt.Errorf("hereisdata.timeout must be positive")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if _, err := c.SeriesSeed(); err != nil {
		return err
	}
	return nil
}

// SeriesSeed is the built-in catalog with the configured series added or overriding by id.
func (c *Config) SeriesSeed() ([]dm.SeriesDescriptor, error) {
	cat := core.NewCatalog(core.DefaultSeries())
	for i, s := range c.Series {
		if _, err := cat.Register(s.Id, s.Name, dm.Unit(s.Unit)); err != nil {
			return nil, fmt.Errorf("series[%d]: %w", i, err)
		}
	}
	return cat.Descriptors(), nil
}
