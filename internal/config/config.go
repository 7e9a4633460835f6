// Package config reads connector settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/catalog"
)

// Config holds process-wide settings. Per-account settings live in the
// billing store.
type Config struct {
	DSN        string `env:"CONNECTOR_DSN"`
	ContactDSN string `env:"CONNECTOR_CONTACT_DSN"` // mapping store pool, DSN when empty

	BillingURL  string `env:"BILLING_API_URL" envDefault:"https://localhost:1500/billmgr"`
	BillingAuth string `env:"BILLING_API_AUTH"` // user:password

	RemoteURL     string        `env:"REMOTE_URL" envDefault:"https://my.ru-tld.ru/manager/billmgr"`
	ProjectName   string        `env:"REMOTE_PROJECT_NAME" envDefault:"*.ru-tld.ru (Domains)"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"60s"`

	CatalogPath   string `env:"CATALOG_PATH" envDefault:"/usr/local/mgr5/etc/rutld/prices.json"`
	CountriesPath string `env:"COUNTRIES_PATH" envDefault:"/usr/local/mgr5/etc/rutld/countries.json"`

	PriorityRegistrar int      `env:"PRIORITY_REGISTRAR_ID" envDefault:"13"`
	NicRegistrar      int      `env:"NIC_REGISTRAR_ID" envDefault:"5"`
	RussianZones      []string `env:"RUSSIAN_ZONES" envSeparator:"," envDefault:"ru,su,рф,ru.net,москва,moscow"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("read configuration from environment: %w", err)
	}
	return cfg, cfg.validate()
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("read configuration: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.ContactDSN == "" {
		c.ContactDSN = c.DSN
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// CatalogOptions returns offer classification settings.
func (c Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		PriorityRegistrar: c.PriorityRegistrar,
		NicRegistrar:      c.NicRegistrar,
		RussianZones:      catalog.ZoneSet(c.RussianZones),
	}
}

// Logger builds a production logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}
