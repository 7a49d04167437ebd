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

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/skewguard/skewguard/pkg/api"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve this component's skew state over HTTP",
		Description: `Run an HTTP server exposing the component's skew state:

  GET /v1/skew        full skew report, recomputed per request
  GET /v1/skew/valid  validity probe (200 pass, 409 fail)
  GET /health         liveness probe
  GET /ready          readiness probe
  GET /metrics        Prometheus metrics

A background loop re-runs the check on an interval so the exported
gauges stay current between requests.

# Examples

Serve skew state for a component in a Kubernetes namespace:
  skewctl serve --config skew.yaml --store cm://db --port 8080`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   8080,
				Sources: cli.EnvVars("PORT"),
			},
			configFlag,
			storeFlag,
			kubeconfigFlag,
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			// server.NewConfig reads PORT from the environment; the flag
			// takes precedence when set.
			if cmd.IsSet("port") {
				if err := os.Setenv("PORT", fmt.Sprintf("%d", cmd.Int("port"))); err != nil {
					return fmt.Errorf("failed to set port: %w", err)
				}
			}

			return api.Serve(api.Options{
				ConfigPath: cmd.String("config"),
				StoreURI:   cmd.String("store"),
				Kubeconfig: cmd.String("kubeconfig"),
			})
		},
	}
}
