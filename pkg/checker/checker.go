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

package checker

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"time"

	"github.com/skewguard/skewguard/pkg/constraint"
	"github.com/skewguard/skewguard/pkg/errors"
	"github.com/skewguard/skewguard/pkg/header"
	"github.com/skewguard/skewguard/pkg/relation"
	"github.com/skewguard/skewguard/pkg/version"
)

// APIVersion is the schema version for skew reports.
const APIVersion = "skewguard.io/v1alpha1"

// Config is the construction-time configuration surface of a Checker.
type Config struct {
	// Component is this component's identifier, used as the publishing
	// side in the relation store.
	Component string `json:"component" yaml:"component"`

	// OwnVersion is this component's tracked version. Set once at
	// construction; changes only when the host process restarts with a
	// new build.
	OwnVersion string `json:"version" yaml:"version"`

	// Deployment is the optional provenance marker published next to
	// the version: relation.DeploymentLocal or relation.DeploymentReleased.
	Deployment string `json:"deployment,omitempty" yaml:"deployment,omitempty"`

	// Relations is the set of peer relationships to monitor.
	Relations []relation.Key `json:"relations" yaml:"relations"`

	// Ranges maps a remote component identifier to an acceptable version
	// range expression (see the constraint package). A peer with no entry
	// must match OwnVersion exactly.
	Ranges map[string]string `json:"ranges,omitempty" yaml:"ranges,omitempty"`

	// StrictAbsent counts unpublished peers as invalid. Off by default
	// to avoid false positives during rolling deployments.
	StrictAbsent bool `json:"strictAbsent,omitempty" yaml:"strictAbsent,omitempty"`

	// ToolVersion is recorded in report headers.
	ToolVersion string `json:"-" yaml:"-"`
}

// Checker verifies that the components on the other side of each
// monitored relationship advertise versions compatible with this
// component. All configuration is fixed at construction; every check
// re-reads the relation store so results always reflect current
// shared state.
type Checker struct {
	store        relation.Store
	component    string
	own          version.Version
	ownRaw       string
	deployment   string
	relations    []relation.Key
	ranges       map[string]constraint.Range
	rawRanges    map[string]string
	strictAbsent bool
	toolVersion  string
}

// New creates a Checker. Malformed configuration, including any range
// expression that fails to parse, is surfaced here as an INVALID_CONFIG
// error; nothing is deferred to evaluation time.
func New(store relation.Store, cfg Config) (*Checker, error) {
	if store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "relation store is required")
	}
	if cfg.Component == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "component identifier is required")
	}

	own, err := version.Parse(cfg.OwnVersion)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "own version is not a valid version token", err)
	}

	switch cfg.Deployment {
	case "", relation.DeploymentLocal, relation.DeploymentReleased:
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unknown deployment marker", map[string]any{"deployment": cfg.Deployment})
	}

	relations := make([]relation.Key, len(cfg.Relations))
	copy(relations, cfg.Relations)
	for _, key := range relations {
		if err := key.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid relation key", err)
		}
	}
	sort.Slice(relations, func(i, j int) bool {
		return relations[i].String() < relations[j].String()
	})

	ranges := make(map[string]constraint.Range, len(cfg.Ranges))
	rawRanges := make(map[string]string, len(cfg.Ranges))
	for remote, expr := range cfg.Ranges {
		r, err := constraint.Parse(expr)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
				"invalid version range", err, map[string]any{"remote": remote, "range": expr})
		}
		ranges[remote] = r
		rawRanges[remote] = r.String()
	}

	return &Checker{
		store:        store,
		component:    cfg.Component,
		own:          own,
		ownRaw:       cfg.OwnVersion,
		deployment:   cfg.Deployment,
		relations:    relations,
		ranges:       ranges,
		rawRanges:    rawRanges,
		strictAbsent: cfg.StrictAbsent,
		toolVersion:  cfg.ToolVersion,
	}, nil
}

// Component returns this component's identifier.
func (c *Checker) Component() string {
	return c.component
}

// OwnVersion returns this component's own version token.
func (c *Checker) OwnVersion() string {
	return c.ownRaw
}

// Relations returns a copy of the monitored relationship keys,
// sorted by key.
func (c *Checker) Relations() []relation.Key {
	out := make([]relation.Key, len(c.relations))
	copy(out, c.relations)
	return out
}

// IsLocalDeployment reports whether this component is marked as a
// locally built deployment.
func (c *Checker) IsLocalDeployment() bool {
	return c.deployment == relation.DeploymentLocal
}

// Valid reports whether every monitored relationship is currently
// acceptable. Absent peers do not fail the check unless StrictAbsent
// was configured.
func (c *Checker) Valid(ctx context.Context) (bool, error) {
	report, err := c.Report(ctx)
	if err != nil {
		return false, err
	}
	return report.Valid(), nil
}

// Report recomputes the full skew report from live store reads.
// A failing or unparseable peer never aborts validation of the others;
// per-relationship failures become report entries.
func (c *Checker) Report(ctx context.Context) (*SkewReport, error) {
	start := time.Now()

	report := &SkewReport{
		Component:  c.component,
		OwnVersion: c.ownRaw,
		Entries:    make([]Entry, 0, len(c.relations)),
	}
	report.Init(header.KindSkewReport, APIVersion, c.toolVersion)

	for _, key := range c.relations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entry := c.checkRelation(ctx, key)
		report.Entries = append(report.Entries, entry)

		switch entry.Status {
		case EntryStatusOK:
			report.Summary.OK++
		case EntryStatusAbsent:
			report.Summary.Absent++
		case EntryStatusInvalid:
			report.Summary.Invalid++
		}
	}

	report.Summary.Total = len(c.relations)
	report.Summary.Duration = time.Since(start)

	switch {
	case report.Summary.Invalid > 0:
		report.Summary.Status = ReportStatusFail
	case c.strictAbsent && report.Summary.Absent > 0:
		report.Summary.Status = ReportStatusFail
	default:
		report.Summary.Status = ReportStatusPass
	}

	slog.Debug("skew check completed",
		"component", c.component,
		"ok", report.Summary.OK,
		"absent", report.Summary.Absent,
		"invalid", report.Summary.Invalid,
		"status", report.Summary.Status,
		"duration", report.Summary.Duration)

	return report, nil
}

// checkRelation evaluates a single monitored relationship.
func (c *Checker) checkRelation(ctx context.Context, key relation.Key) Entry {
	entry := Entry{
		Relation: key.Relation,
		Remote:   key.Remote,
		Expected: c.expectedFor(key.Remote),
	}

	observed, ok, err := c.store.Get(ctx, key, relation.FieldVersion)
	if err != nil {
		entry.Status = EntryStatusInvalid
		entry.Reason = ReasonStoreError
		slog.Warn("relation store read failed",
			"relation", key.String(),
			"error", err)
		return entry
	}
	if !ok {
		entry.Status = EntryStatusAbsent
		entry.Reason = ReasonAbsent
		slog.Debug("peer version absent", "relation", key.String())
		return entry
	}
	entry.Observed = observed

	peer, err := version.Parse(observed)
	if err != nil {
		entry.Status = EntryStatusInvalid
		entry.Reason = ReasonUnparseable
		slog.Debug("peer version unparseable",
			"relation", key.String(),
			"observed", observed,
			"error", err)
		return entry
	}

	if r, hasRange := c.ranges[key.Remote]; hasRange {
		if !r.Matches(peer) {
			entry.Status = EntryStatusInvalid
			entry.Reason = ReasonOutOfRange
			slog.Debug("peer version out of range",
				"relation", key.String(),
				"observed", observed,
				"range", r.String())
			return entry
		}
	} else if !c.own.Equal(peer) {
		entry.Status = EntryStatusInvalid
		entry.Reason = ReasonMismatch
		slog.Debug("peer version mismatch",
			"relation", key.String(),
			"observed", observed,
			"own", c.ownRaw)
		return entry
	}

	entry.Status = EntryStatusOK
	return entry
}

// expectedFor returns what a peer's version is checked against.
func (c *Checker) expectedFor(remote string) string {
	if raw, ok := c.rawRanges[remote]; ok {
		return raw
	}
	return c.ownRaw
}

// PublishOwnVersion writes this component's own version, and the
// deployment marker when configured, into every monitored relationship
// entry. Idempotent: repeated calls with an unchanged own version leave
// the store in the same state.
//
// Calling contract: in a multi-replica rollout this must be invoked
// only once the component's version is final for the current deployment
// step, i.e. by the last replica to complete the upgrade. Publishing
// earlier advertises a version some replicas do not run yet.
func (c *Checker) PublishOwnVersion(ctx context.Context) error {
	var errs []error
	for _, key := range c.relations {
		if err := c.publish(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errors.ErrCodeStore, "publishing own version", stderrors.Join(errs...))
	}

	slog.Info("published own version",
		"component", c.component,
		"version", c.ownRaw,
		"relations", len(c.relations))
	return nil
}

// PublishTo writes this component's own version into a single monitored
// relationship, for callers reacting to one relationship being
// established rather than a full deployment step.
func (c *Checker) PublishTo(ctx context.Context, key relation.Key) error {
	if !c.monitors(key) {
		return errors.NewWithContext(errors.ErrCodeNotFound,
			"relation is not monitored", map[string]any{"relation": key.String()})
	}
	return c.publish(ctx, key)
}

func (c *Checker) publish(ctx context.Context, key relation.Key) error {
	if err := c.store.Set(ctx, key, relation.FieldVersion, c.ownRaw); err != nil {
		return errors.WrapWithContext(errors.ErrCodeStore,
			"writing version", err, map[string]any{"relation": key.String()})
	}
	if c.deployment != "" {
		if err := c.store.Set(ctx, key, relation.FieldDeployment, c.deployment); err != nil {
			return errors.WrapWithContext(errors.ErrCodeStore,
				"writing deployment marker", err, map[string]any{"relation": key.String()})
		}
	}
	return nil
}

func (c *Checker) monitors(key relation.Key) bool {
	for _, k := range c.relations {
		if k == key {
			return true
		}
	}
	return false
}

// PeerVersion returns the version advertised by the named remote
// component on any monitored relationship. Returns a NOT_FOUND error
// when the component is not monitored or has not published.
func (c *Checker) PeerVersion(ctx context.Context, remote string) (string, error) {
	for _, key := range c.relations {
		if key.Remote != remote {
			continue
		}
		observed, ok, err := c.store.Get(ctx, key, relation.FieldVersion)
		if err != nil {
			return "", errors.WrapWithContext(errors.ErrCodeStore,
				"reading peer version", err, map[string]any{"relation": key.String()})
		}
		if ok {
			return observed, nil
		}
	}
	return "", errors.NewWithContext(errors.ErrCodeNotFound,
		"no version published by peer", map[string]any{"remote": remote})
}

// HasLocalPeer reports whether any monitored peer advertises a locally
// built deployment. Peers without a deployment marker are not counted.
func (c *Checker) HasLocalPeer(ctx context.Context) (bool, error) {
	for _, key := range c.relations {
		marker, ok, err := c.store.Get(ctx, key, relation.FieldDeployment)
		if err != nil {
			return false, errors.WrapWithContext(errors.ErrCodeStore,
				"reading deployment marker", err, map[string]any{"relation": key.String()})
		}
		if ok && marker == relation.DeploymentLocal {
			return true, nil
		}
	}
	return false, nil
}
