// Package config reads the optional yaml run config.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"btax/internal/tax"
)

type Config struct {
	// Strategy names the lot selection order: first-in-first-out,
	// last-in-first-out, highest-cost-first-out or lowest-cost-first-out.
	Strategy string `yaml:"strategy"`

	// DustTolerance is the magnitude below which a residual usd amount
	// left by a lot split is treated as zero.
	DustTolerance string `yaml:"dust_tolerance"`

	Report Report `yaml:"report"`
}

type Report struct {
	// Summary prints a per-year gains table to stdout.
	Summary bool `yaml:"summary"`

	// Chart, when non-empty, is the path of a png chart of yearly gains.
	Chart string `yaml:"chart"`
}

func Default() *Config {
	return &Config{
		Strategy:      "first-in-first-out",
		DustTolerance: tax.DefaultDustTolerance.String(),
		Report:        Report{Summary: true},
	}
}

func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	d := yaml.NewDecoder(r)
	if err := d.Decode(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Dust parses the configured dust tolerance.
func (c *Config) Dust() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.DustTolerance)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid dust_tolerance %q: %w", c.DustTolerance, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid dust_tolerance %q: must not be negative", c.DustTolerance)
	}

	return d, nil
}
