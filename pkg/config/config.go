// Copyright 2025 The Skewguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates the component's skew-checking
// configuration from a YAML file, with selected environment overrides
// for values that are naturally injected at deploy time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skewguard/skewguard/pkg/checker"
	"github.com/skewguard/skewguard/pkg/constraint"
	"github.com/skewguard/skewguard/pkg/errors"
	"github.com/skewguard/skewguard/pkg/relation"
	"github.com/skewguard/skewguard/pkg/version"
)

const (
	// envComponent overrides the component name from the file.
	envComponent = "SKEW_COMPONENT"

	// envVersion overrides the running version from the file.
	envVersion = "SKEW_VERSION"

	// envDeployment overrides the deployment provenance marker.
	envDeployment = "SKEW_DEPLOYMENT"
)

// Relation names one monitored relationship endpoint in the file.
type Relation struct {
	Relation string `yaml:"relation"`
	Remote   string `yaml:"remote"`
}

// Config is the on-disk configuration of a skew-checked component.
type Config struct {
	// Component is this component's name as peers see it.
	Component string `yaml:"component"`

	// Version is the version this component is running.
	Version string `yaml:"version"`

	// Deployment marks how the component was deployed: "local" builds
	// are exempt from strict matching against released peers.
	Deployment string `yaml:"deployment"`

	// StrictAbsent escalates silent peers from reported to failing.
	StrictAbsent bool `yaml:"strict_absent"`

	// Relations lists the relationship endpoints to monitor.
	Relations []Relation `yaml:"relations"`

	// Ranges maps a remote component name to the version range this
	// component accepts from it. Remotes without an entry must match
	// the component's own version exactly.
	Ranges map[string]string `yaml:"ranges"`
}

// Load reads and validates the configuration at path, applying any
// environment overrides before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("failed to read config file %s", path), err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to unmarshal config", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envComponent); v != "" {
		c.Component = v
	}
	if v := os.Getenv(envVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(envDeployment); v != "" {
		c.Deployment = v
	}
}

// Validate checks the configuration the same way construction of a
// checker would, so a bad file is rejected before any store is opened.
func (c *Config) Validate() error {
	if c.Component == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "component is required")
	}
	if c.Version == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "version is required")
	}
	if _, err := version.Parse(c.Version); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
			"own version is not parseable", err,
			map[string]any{"version": c.Version})
	}

	switch c.Deployment {
	case "", relation.DeploymentLocal, relation.DeploymentReleased:
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unknown deployment marker",
			map[string]any{"deployment": c.Deployment})
	}

	if len(c.Relations) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one relation is required")
	}

	seen := make(map[relation.Key]bool, len(c.Relations))
	for _, r := range c.Relations {
		key := relation.Key{Relation: r.Relation, Remote: r.Remote}
		if err := key.Validate(); err != nil {
			return err
		}
		if r.Remote == c.Component {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"relation remote cannot be the component itself",
				map[string]any{"relation": r.Relation})
		}
		if seen[key] {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"duplicate relation",
				map[string]any{"relation": key.String()})
		}
		seen[key] = true
	}

	for remote, expr := range c.Ranges {
		if _, err := constraint.Parse(expr); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
				"invalid version range", err,
				map[string]any{"remote": remote, "range": expr})
		}
	}

	return nil
}

// CheckerConfig converts the file configuration into the checker's
// runtime configuration.
func (c *Config) CheckerConfig(toolVersion string) checker.Config {
	keys := make([]relation.Key, 0, len(c.Relations))
	for _, r := range c.Relations {
		keys = append(keys, relation.Key{Relation: r.Relation, Remote: r.Remote})
	}

	deployment := c.Deployment
	if deployment == "" {
		deployment = relation.DeploymentReleased
	}

	return checker.Config{
		Component:    c.Component,
		OwnVersion:   c.Version,
		Deployment:   deployment,
		Relations:    keys,
		Ranges:       c.Ranges,
		StrictAbsent: c.StrictAbsent,
		ToolVersion:  toolVersion,
	}
}
