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

// Package checker verifies version compatibility across the peer
// relationships of a distributed deployment.
//
// # Overview
//
// Cooperating components (shards of a cluster, a broker and its
// clients, a manager and its workers) each publish their own tracked
// version, a software revision, workload version, or protocol version,
// into shared per-relationship state, and independently evaluate
// whether the versions observed from their peers are acceptable. There
// is no central coordinator: every component reaches its own verdict
// from local, pairwise observation.
//
// A peer with no configured range must match this component's version
// exactly; a peer with a configured range (see the constraint package)
// must fall inside it.
//
// # Usage
//
// Construct once per component instance, at process start:
//
//	chk, err := checker.New(store, checker.Config{
//	    Component:  "shard-one",
//	    OwnVersion: "2.15.0",
//	    Relations: []relation.Key{
//	        {Relation: "cluster", Remote: "config-server"},
//	    },
//	    Ranges: map[string]string{
//	        "config-server": ">=2.0,<3.0",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err) // malformed configuration is fatal here, never later
//	}
//
// Check freshness wherever a verdict is needed (status reporting,
// gating an action, gating event handling):
//
//	ok, err := chk.Valid(ctx)
//	report, err := chk.Report(ctx)
//
// Publish this component's version once it is final for the current
// deployment step. In a multi-replica rollout only the last replica to
// complete the upgrade should publish:
//
//	if lastToUpgrade {
//	    err := chk.PublishOwnVersion(ctx)
//	}
//
// # Failure classes
//
// Per-relationship failures never abort the overall check; they appear
// as report entries with a reason: "version mismatch", "out of accepted
// range", "unparseable version", or "store read failed". An unpublished
// peer is reported distinctly as absent and does not fail the check by
// default, so a rolling deployment does not raise false positives; set
// Config.StrictAbsent to escalate absence to a failure.
package checker
