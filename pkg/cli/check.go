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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/skewguard/skewguard/pkg/api"
	"github.com/skewguard/skewguard/pkg/serializer"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:                  "check",
		EnableShellCompletion: true,
		Usage:                 "Check peer versions across all monitored relationships",
		Description: `Read every peer's published version from the relation store and
validate it against this component's own version or the configured
acceptable range.

Peers that have not published a version yet are reported as absent but
do not fail the check by default (set strict_absent in the config file
to escalate them).

# Examples

Check against peers in a Kubernetes namespace:
  skewctl check --config skew.yaml --store cm://db

Output the full report to a file as JSON:
  skewctl check -c skew.yaml -s cm://db -o report.json -t json

Fail the command when any peer is out of range (useful in CI/CD and
upgrade gates):
  skewctl check -c skew.yaml -s cm://db --fail-on-skew`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fail-on-skew",
				Usage: "Exit with non-zero status if any relationship fails validation",
			},
			configFlag,
			storeFlag,
			kubeconfigFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			chk, err := api.NewChecker(api.Options{
				ConfigPath: cmd.String("config"),
				StoreURI:   cmd.String("store"),
				Kubeconfig: cmd.String("kubeconfig"),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize checker: %w", err)
			}

			report, err := chk.Report(ctx)
			if err != nil {
				return fmt.Errorf("skew check failed: %w", err)
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()

			if err := ser.Serialize(ctx, report); err != nil {
				return fmt.Errorf("failed to serialize skew report: %w", err)
			}

			slog.Info("check completed",
				"component", report.Component,
				"status", report.Summary.Status,
				"ok", report.Summary.OK,
				"absent", report.Summary.Absent,
				"invalid", report.Summary.Invalid,
				"duration", report.Summary.Duration)

			if cmd.Bool("fail-on-skew") && !report.Valid() {
				return fmt.Errorf("skew check failed: %d relationship(s) did not pass", report.Summary.Invalid)
			}

			return nil
		},
	}
}
