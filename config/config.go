// Package config loads the publisher configuration.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Portal identifies the remote platform and the credentials to use.
// Obtaining the token is outside this tool; it is carried as an opaque
// string.
type Portal struct {
	URL      string `yaml:"url" validate:"required,url"`
	Username string `yaml:"username" validate:"required"`
	Token    string `yaml:"token" validate:"required"`
}

// Service describes the feature service to publish.
type Service struct {
	Name string `yaml:"name" validate:"required"`
	// Group is the id of the group the service is shared with. Empty means
	// a new group is created for the service.
	Group string `yaml:"group"`
}

// Tools configures optional external collaborators.
type Tools struct {
	// KMLGenerator is the path of an external program invoked as
	// "kmlGenerator <bundle.zip> <out.kml>".
	KMLGenerator string `yaml:"kmlGenerator"`
}

// Config is the root configuration structure.
type Config struct {
	Portal  Portal  `yaml:"portal" validate:"required"`
	Service Service `yaml:"service" validate:"required"`
	Tools   Tools   `yaml:"tools"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return &cfg, nil
}
