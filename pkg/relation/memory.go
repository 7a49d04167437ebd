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
	"maps"
	"sync"
)

// MemoryStore is an in-process Store. Each relationship entry keeps two
// buckets, one per side: Get reads the peer bucket, Set writes the own
// bucket. Used by tests and by single-process deployments; real
// deployments use a shared transport such as the ConfigMap store.
type MemoryStore struct {
	mu   sync.RWMutex
	peer map[Key]map[string]string
	own  map[Key]map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		peer: make(map[Key]map[string]string),
		own:  make(map[Key]map[string]string),
	}
}

// Get returns the peer-published value for field on key.
func (s *MemoryStore) Get(_ context.Context, key Key, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bag, ok := s.peer[key]
	if !ok {
		return "", false, nil
	}
	v, ok := bag[field]
	return v, ok, nil
}

// Set publishes the value for field on this component's side of key.
func (s *MemoryStore) Set(_ context.Context, key Key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bag, ok := s.own[key]
	if !ok {
		bag = make(map[string]string)
		s.own[key] = bag
	}
	bag[field] = value
	return nil
}

// SetPeer seeds a peer-published value, standing in for the remote
// component's own publish step.
func (s *MemoryStore) SetPeer(key Key, field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bag, ok := s.peer[key]
	if !ok {
		bag = make(map[string]string)
		s.peer[key] = bag
	}
	bag[field] = value
}

// DeletePeer removes a peer-published field, standing in for a peer
// that has not yet reached its publish step.
func (s *MemoryStore) DeletePeer(key Key, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bag, ok := s.peer[key]; ok {
		delete(bag, field)
	}
}

// Dump returns a deep copy of everything this side has published,
// keyed by relationship. Intended for tests asserting publish effects.
func (s *MemoryStore) Dump() map[Key]map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Key]map[string]string, len(s.own))
	for k, bag := range s.own {
		out[k] = maps.Clone(bag)
	}
	return out
}
