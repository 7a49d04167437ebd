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

// Package cli implements the command-line interface for the skewctl tool.
//
// # Overview
//
// skewctl validates version compatibility between components that share
// relationships through a relation store. Each component publishes its
// own version and checks every peer's published version against its own
// version or a configured acceptable range.
//
// # Commands
//
// check - Validate peer versions:
//
//	skewctl check --config skew.yaml --store cm://db [--fail-on-skew]
//
// Reads every peer's published version and produces a skew report.
// Output defaults to stdout in YAML format.
//
// publish - Advertise this component's version:
//
//	skewctl publish --config skew.yaml --store cm://db --final-unit
//
// Writes the component's version into the relation store. Restricted to
// the final unit of a deployment so peers never observe a new version
// mid-rollout.
//
// serve - Expose skew state over HTTP:
//
//	skewctl serve --config skew.yaml --store cm://db --port 8080
//
// Serves the skew report, a validity probe, and Prometheus metrics.
//
// # Store URIs
//
//	memory://         in-process store, for tests and dry runs
//	cm://<namespace>  Kubernetes ConfigMaps in the given namespace
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, store failure, or skew
//	   detected with --fail-on-skew)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/skewguard/skewguard/pkg/cli.version=1.0.0'"
package cli
