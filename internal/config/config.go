// Package config loads the application configuration from a YAML file.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// Config holds everything the application needs to start.
type Config struct {
	// DatabasePath is the DuckDB file backing the ledger. The file is
	// created on first use.
	DatabasePath string `yaml:"database_path" validate:"required"`

	// Provider selects the price source, either "catalog" or "polygon".
	Provider string `yaml:"provider" validate:"required,oneof=catalog polygon"`

	// PolygonAPIKey is required only when Provider is "polygon".
	PolygonAPIKey string `yaml:"polygon_api_key" validate:"required_if=Provider polygon"`

	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// CatalogPath points at the ticker catalog JSON used by seeding.
	CatalogPath string `yaml:"catalog_path"`

	// SeedLimit caps how many catalog entries seeding inserts. Zero
	// means no cap.
	SeedLimit int `yaml:"seed_limit" validate:"gte=0"`
}

// Defaults returns a configuration suitable for local use.
func Defaults() Config {
	return Config{
		DatabasePath: "papertrade.db",
		Provider:     "catalog",
		ListenAddr:   "127.0.0.1:8450",
		CatalogPath:  "company_tickers.json",
		SeedLimit:    0,
	}
}

// Load reads a YAML config file, applying defaults for omitted fields.
func Load(path string) (Config, error) {
	config := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %q", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %q", path)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
