// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package tools holds shared plumbing for the command-line tools: a YAML
// configuration file and a stderr logger.
package tools

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the optional on-disk configuration shared by the command-line
// tools. Flags override its values.
type Config struct {
	// IndexCapacity bounds the in-memory seek index. <= 0 means unbounded.
	IndexCapacity int `yaml:"index_capacity"`

	// Compression names the sidecar compression scheme (NONE, SNAPPY, GZIP).
	Compression string `yaml:"compression"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		IndexCapacity: 0,
		Compression:   "SNAPPY",
	}
}

// LoadConfig reads and parses the YAML configuration at path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %q", path)
	}
	return cfg, nil
}
