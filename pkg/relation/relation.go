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

// Package relation defines the peer relationship data model and the
// shared key-value store abstraction the version checker reads and
// writes through. The checker never talks to a transport directly;
// it is handed a Store at construction.
package relation

import (
	"context"
	"fmt"
	"strings"
)

const (
	// FieldVersion is the store field carrying a component's advertised version.
	FieldVersion = "version"

	// FieldDeployment is the store field carrying a component's deployment
	// provenance marker (see DeploymentLocal / DeploymentReleased).
	FieldDeployment = "deployment"
)

const (
	// DeploymentLocal marks a component built and deployed from a local tree.
	DeploymentLocal = "local"

	// DeploymentReleased marks a component delivered through a release channel.
	DeploymentReleased = "released"
)

// Key identifies one monitored peer relationship: a relationship name
// plus the remote component on the other side. Stable for the life of
// the relationship.
type Key struct {
	// Relation is the relationship name (e.g. "cluster", "sharding").
	Relation string `json:"relation" yaml:"relation"`

	// Remote is the identifier of the remote component (e.g. "config-server").
	Remote string `json:"remote" yaml:"remote"`
}

// String returns the key in "relation/remote" form.
func (k Key) String() string {
	return k.Relation + "/" + k.Remote
}

// Validate checks that both parts of the key are present and free of
// the "/" separator.
func (k Key) Validate() error {
	if k.Relation == "" {
		return fmt.Errorf("relation name is empty")
	}
	if k.Remote == "" {
		return fmt.Errorf("remote component is empty: %q", k.Relation)
	}
	if strings.Contains(k.Relation, "/") || strings.Contains(k.Remote, "/") {
		return fmt.Errorf("relation key parts cannot contain '/': %q", k.String())
	}
	return nil
}

// Store is the per-relationship key-value bag shared between both sides
// of a relationship. Get reads a field the remote component published;
// Set publishes a field for this component. Values are opaque strings.
//
// Implementations own all synchronization: a single relationship entry
// is written by at most one side at a time (last writer wins, by
// transport contract), and the checker performs no conflict resolution.
type Store interface {
	// Get returns the value of field published by the remote side of key.
	// The second return is false when the peer has not published the field.
	Get(ctx context.Context, key Key, field string) (string, bool, error)

	// Set publishes the value of field on this component's side of key.
	Set(ctx context.Context, key Key, field, value string) error
}
