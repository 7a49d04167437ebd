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

package relation

import (
	"context"
	"testing"
)

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{name: "valid", key: Key{Relation: "cluster", Remote: "config-server"}},
		{name: "missing relation", key: Key{Remote: "config-server"}, wantErr: true},
		{name: "missing remote", key: Key{Relation: "cluster"}, wantErr: true},
		{name: "separator in relation", key: Key{Relation: "a/b", Remote: "c"}, wantErr: true},
		{name: "separator in remote", key: Key{Relation: "a", Remote: "b/c"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	k := Key{Relation: "sharding", Remote: "shard-one"}
	if got := k.String(); got != "sharding/shard-one" {
		t.Errorf("String() = %q", got)
	}
}

func TestMemoryStoreSides(t *testing.T) {
	ctx := context.TODO()
	s := NewMemoryStore()
	key := Key{Relation: "cluster", Remote: "config-server"}

	// Nothing published by the peer yet.
	_, ok, err := s.Get(ctx, key, FieldVersion)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected absent peer version")
	}

	// Own publish must not leak into Get: Get reads the peer side.
	if err := s.Set(ctx, key, FieldVersion, "2.15.0"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, ok, _ = s.Get(ctx, key, FieldVersion)
	if ok {
		t.Fatal("own publish visible through Get; sides must be separate")
	}

	// Seeded peer value is visible.
	s.SetPeer(key, FieldVersion, "2.14.9")
	v, ok, _ := s.Get(ctx, key, FieldVersion)
	if !ok || v != "2.14.9" {
		t.Fatalf("Get = (%q, %v), want (2.14.9, true)", v, ok)
	}

	// DeletePeer makes it absent again.
	s.DeletePeer(key, FieldVersion)
	if _, ok, _ = s.Get(ctx, key, FieldVersion); ok {
		t.Fatal("expected version absent after DeletePeer")
	}
}

func TestMemoryStoreDump(t *testing.T) {
	ctx := context.TODO()
	s := NewMemoryStore()
	key := Key{Relation: "cluster", Remote: "config-server"}

	if err := s.Set(ctx, key, FieldVersion, "2.15.0"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, key, FieldDeployment, DeploymentReleased); err != nil {
		t.Fatalf("Set: %v", err)
	}

	dump := s.Dump()
	if dump[key][FieldVersion] != "2.15.0" {
		t.Errorf("dump version = %q", dump[key][FieldVersion])
	}
	if dump[key][FieldDeployment] != DeploymentReleased {
		t.Errorf("dump deployment = %q", dump[key][FieldDeployment])
	}

	// Dump is a copy; mutating it must not touch the store.
	dump[key][FieldVersion] = "9.9.9"
	again := s.Dump()
	if again[key][FieldVersion] != "2.15.0" {
		t.Error("Dump returned a live reference")
	}
}
