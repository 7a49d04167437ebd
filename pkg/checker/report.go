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
	"time"

	"github.com/skewguard/skewguard/pkg/header"
)

// ReportStatus represents the overall skew check outcome.
type ReportStatus string

const (
	// ReportStatusPass indicates every monitored relationship is acceptable.
	ReportStatusPass ReportStatus = "pass"

	// ReportStatusFail indicates one or more relationships failed validation.
	ReportStatusFail ReportStatus = "fail"
)

// EntryStatus represents the outcome for a single monitored relationship.
type EntryStatus string

const (
	// EntryStatusOK indicates the peer version satisfies its constraint.
	EntryStatusOK EntryStatus = "ok"

	// EntryStatusAbsent indicates the peer has not yet published a version.
	// Not counted as invalid by default; a peer may not have reached its
	// publish step yet during a rolling deployment.
	EntryStatusAbsent EntryStatus = "absent"

	// EntryStatusInvalid indicates the peer published an unacceptable
	// or unparseable version.
	EntryStatusInvalid EntryStatus = "invalid"
)

// Failure reasons surfaced in report entries.
const (
	// ReasonMismatch: no range is configured for the peer and its version
	// does not exactly equal this component's own version.
	ReasonMismatch = "version mismatch"

	// ReasonOutOfRange: the peer's version does not satisfy the configured range.
	ReasonOutOfRange = "out of accepted range"

	// ReasonUnparseable: the peer published a version token that does not parse.
	ReasonUnparseable = "unparseable version"

	// ReasonAbsent: the peer has not published a version yet.
	ReasonAbsent = "peer has not published a version"

	// ReasonStoreError: the relation store read failed for this relationship.
	ReasonStoreError = "store read failed"
)

// SkewReport is the full validity verdict for every monitored
// relationship, recomputed from live store reads on every call.
// Never persisted by the checker.
type SkewReport struct {
	header.Header `json:",inline" yaml:",inline"`

	// Component is the identifier of the component that ran the check.
	Component string `json:"component" yaml:"component"`

	// OwnVersion is the checking component's own version.
	OwnVersion string `json:"ownVersion" yaml:"ownVersion"`

	// Summary contains aggregate check statistics.
	Summary Summary `json:"summary" yaml:"summary"`

	// Entries contains per-relationship details, sorted by relationship key.
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Summary contains aggregate statistics about a skew check.
type Summary struct {
	// OK is the count of relationships that satisfied their constraint.
	OK int `json:"ok" yaml:"ok"`

	// Absent is the count of relationships whose peer has not published.
	Absent int `json:"absent" yaml:"absent"`

	// Invalid is the count of relationships that failed validation.
	Invalid int `json:"invalid" yaml:"invalid"`

	// Total is the number of monitored relationships.
	Total int `json:"total" yaml:"total"`

	// Status is the overall check status.
	Status ReportStatus `json:"status" yaml:"status"`

	// Duration is how long the check took, store reads included.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Entry is the verdict for one monitored relationship.
type Entry struct {
	// Relation is the relationship name.
	Relation string `json:"relation" yaml:"relation"`

	// Remote is the remote component identifier.
	Remote string `json:"remote" yaml:"remote"`

	// Observed is the version the peer advertised, empty when absent.
	Observed string `json:"observed,omitempty" yaml:"observed,omitempty"`

	// Expected is what the peer version was checked against: the own
	// version for exact-match relationships, or the range expression.
	Expected string `json:"expected" yaml:"expected"`

	// Status is the outcome for this relationship.
	Status EntryStatus `json:"status" yaml:"status"`

	// Reason states why a relationship is absent or invalid.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Key returns the relationship key of the entry.
func (e Entry) Key() string {
	return e.Relation + "/" + e.Remote
}

// Valid reports whether the check passed.
func (r *SkewReport) Valid() bool {
	return r.Summary.Status == ReportStatusPass
}

// InvalidEntries returns the entries that failed validation.
func (r *SkewReport) InvalidEntries() []Entry {
	out := make([]Entry, 0, r.Summary.Invalid)
	for _, e := range r.Entries {
		if e.Status == EntryStatusInvalid {
			out = append(out, e)
		}
	}
	return out
}

// AbsentEntries returns the entries whose peer has not published,
// so callers can escalate them even though they do not fail the check
// by default.
func (r *SkewReport) AbsentEntries() []Entry {
	out := make([]Entry, 0, r.Summary.Absent)
	for _, e := range r.Entries {
		if e.Status == EntryStatusAbsent {
			out = append(out, e)
		}
	}
	return out
}
