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

// Package api wires configuration, relation store, checker, and HTTP
// server into a runnable skew service.
package api

import (
	"log/slog"

	"github.com/skewguard/skewguard/pkg/checker"
	"github.com/skewguard/skewguard/pkg/config"
	"github.com/skewguard/skewguard/pkg/logging"
	"github.com/skewguard/skewguard/pkg/server"
)

const (
	name           = "skewguard"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/skewguard/skewguard/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Version returns the build version of the tool.
func Version() string {
	return version
}

// Options configures Serve.
type Options struct {
	// ConfigPath is the path to the component's YAML configuration.
	ConfigPath string

	// StoreURI selects the relation store: "memory://" or "cm://<namespace>".
	StoreURI string

	// Kubeconfig optionally overrides kubeconfig discovery for
	// ConfigMap stores.
	Kubeconfig string
}

// Serve publishes the component's own version, then serves its skew
// state over HTTP until shutdown.
func Serve(opts Options) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	chk, err := NewChecker(opts)
	if err != nil {
		return err
	}

	cfg := server.NewConfig()
	cfg.Name = name
	cfg.Version = version

	if err := server.Run(cfg, chk); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// NewChecker builds a checker from the configuration file and store
// URI in opts.
func NewChecker(opts Options) (*checker.Checker, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(opts.StoreURI, opts.Kubeconfig, cfg.Component, version)
	if err != nil {
		return nil, err
	}

	return checker.New(store, cfg.CheckerConfig(version))
}
