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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/skewguard/skewguard/pkg/api"
	"github.com/skewguard/skewguard/pkg/relation"
)

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:                  "publish",
		EnableShellCompletion: true,
		Usage:                 "Publish this component's version to its peers",
		Description: `Write this component's version into the relation store so peers can
validate against it.

Publishing is restricted to the final unit of a deployment: in a
rolling upgrade, units still running the old version must not see the
new version advertised before the rollout completes. Pass --final-unit
from the unit that finishes last.

The write is idempotent; republishing the same version is a no-op.

# Examples

Publish to all monitored relationships:
  skewctl publish --config skew.yaml --store cm://db --final-unit

Publish to a single relationship:
  skewctl publish -c skew.yaml -s cm://db --final-unit --relation cluster/config-server`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "final-unit",
				Usage: "Confirm this is the last unit of the deployment to upgrade",
			},
			&cli.StringFlag{
				Name:  "relation",
				Usage: "Publish to a single relationship only (format: relation/remote)",
			},
			configFlag,
			storeFlag,
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("final-unit") {
				return fmt.Errorf("publish is restricted to the final unit of a deployment; pass --final-unit to confirm")
			}

			chk, err := api.NewChecker(api.Options{
				ConfigPath: cmd.String("config"),
				StoreURI:   cmd.String("store"),
				Kubeconfig: cmd.String("kubeconfig"),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize checker: %w", err)
			}

			if target := cmd.String("relation"); target != "" {
				key, err := parseRelationKey(target)
				if err != nil {
					return err
				}
				if err := chk.PublishTo(ctx, key); err != nil {
					return fmt.Errorf("failed to publish version: %w", err)
				}
				slog.Info("version published",
					"component", chk.Component(),
					"version", chk.OwnVersion(),
					"relation", key.String())
				return nil
			}

			if err := chk.PublishOwnVersion(ctx); err != nil {
				return fmt.Errorf("failed to publish version: %w", err)
			}

			slog.Info("version published",
				"component", chk.Component(),
				"version", chk.OwnVersion(),
				"relations", len(chk.Relations()))
			return nil
		},
	}
}

// parseRelationKey parses a "relation/remote" flag value.
func parseRelationKey(s string) (relation.Key, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return relation.Key{}, fmt.Errorf("invalid --relation value %q (expected relation/remote)", s)
	}
	return relation.Key{Relation: parts[0], Remote: parts[1]}, nil
}
