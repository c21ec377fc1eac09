// Package config loads and validates configuration for the cmd/scenarioserve
// front-end with an apply-defaults-then-validate shape:
// github.com/creasty/defaults populates struct tag defaults, then
// github.com/go-playground/validator/v10 checks the result.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ServerConfig configures cmd/scenarioserve.
type ServerConfig struct {
	Addr             string `yaml:"addr" default:":8080" validate:"required"`
	MaxBodyBytes     int64  `yaml:"maxBodyBytes" default:"1048576" validate:"gt=0"`
	ScenarioCacheCap int    `yaml:"scenarioCacheCap" default:"256" validate:"gt=0"`
}

// Load reads a YAML config file at path, if it exists, applies struct-tag
// defaults for any field the file leaves unset, and validates the result.
// A missing path is not an error: defaults alone produce a valid config.
func Load(path string) (ServerConfig, error) {
	var cfg ServerConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return ServerConfig{}, fmt.Errorf("reading config file %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ServerConfig{}, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	if err := defaults.Set(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("applying config defaults: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
