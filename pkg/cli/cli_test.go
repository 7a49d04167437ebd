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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/skewguard/skewguard/pkg/checker"
	"github.com/skewguard/skewguard/pkg/relation"
	"github.com/skewguard/skewguard/pkg/serializer"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skew.yaml")
	content := `
component: shard-one
version: 2.15.0
relations:
  - relation: cluster
    remote: config-server
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "valid yaml format", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "valid json format", format: "json", wantFormat: serializer.FormatJSON},
		{name: "valid table format", format: "table", wantFormat: serializer.FormatTable},
		{name: "invalid format xml", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: tt.format,
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					require.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}

			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestParseRelationKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    relation.Key
		wantErr bool
	}{
		{
			name:  "valid key",
			input: "cluster/config-server",
			want:  relation.Key{Relation: "cluster", Remote: "config-server"},
		},
		{
			name:  "remote with slash",
			input: "cluster/team/config-server",
			want:  relation.Key{Relation: "cluster", Remote: "team/config-server"},
		},
		{name: "missing remote", input: "cluster/", wantErr: true},
		{name: "missing relation", input: "/config-server", wantErr: true},
		{name: "no separator", input: "cluster", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRelationKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	outPath := filepath.Join(t.TempDir(), "report.json")

	err := New().Run(context.Background(), []string{
		"skewctl", "check",
		"--config", cfgPath,
		"--store", "memory://",
		"--output", outPath,
		"--format", "json",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report checker.SkewReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "shard-one", report.Component)
	// The peer never published into the fresh in-memory store.
	assert.Equal(t, 1, report.Summary.Absent)
	assert.Equal(t, checker.ReportStatusPass, report.Summary.Status)
}

func TestCheckCommandBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "skew.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("component: a\nversion: abc!\nrelations: [{relation: r, remote: peer}]"), 0o600))

	err := New().Run(context.Background(), []string{
		"skewctl", "check", "--config", cfgPath,
	})
	require.Error(t, err)
}

func TestCheckCommandUnknownFormat(t *testing.T) {
	err := New().Run(context.Background(), []string{
		"skewctl", "check", "--config", writeTestConfig(t), "--format", "xml",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestPublishRequiresFinalUnit(t *testing.T) {
	err := New().Run(context.Background(), []string{
		"skewctl", "publish", "--config", writeTestConfig(t),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--final-unit")
}

func TestPublishCommand(t *testing.T) {
	err := New().Run(context.Background(), []string{
		"skewctl", "publish",
		"--config", writeTestConfig(t),
		"--store", "memory://",
		"--final-unit",
	})
	require.NoError(t, err)
}

func TestPublishCommandBadRelationFlag(t *testing.T) {
	err := New().Run(context.Background(), []string{
		"skewctl", "publish",
		"--config", writeTestConfig(t),
		"--final-unit",
		"--relation", "not-a-key",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected relation/remote")
}

func TestPublishCommandUnmonitoredRelation(t *testing.T) {
	err := New().Run(context.Background(), []string{
		"skewctl", "publish",
		"--config", writeTestConfig(t),
		"--final-unit",
		"--relation", "replicas/shard-two",
	})
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	err := New().Run(context.Background(), []string{
		"skewctl", "version", "--format", "json",
	})
	require.NoError(t, err)
}
