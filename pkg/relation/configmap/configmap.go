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

// Package configmap implements the relation store on Kubernetes
// ConfigMaps, one ConfigMap per relationship, shared by both sides.
//
// Each component writes only its own data keys ("<component>.<field>")
// through server-side apply with a per-component field manager, so the
// two sides of a relationship never contend for the same key and the
// API server serializes writers. Relation and component names must be
// valid ConfigMap name/key material (DNS label characters).
package configmap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/skewguard/skewguard/pkg/k8s/client"
	"github.com/skewguard/skewguard/pkg/relation"
)

const (
	// namePrefix prefixes every relationship ConfigMap name.
	namePrefix = "skew-rel-"

	// fieldManagerPrefix prefixes the per-component apply field manager.
	fieldManagerPrefix = "skewguard-"

	// writeTimeout bounds a single apply call. Generous to accommodate
	// the client-side rate limiter after bursts of checks.
	writeTimeout = 30 * time.Second
)

// Store is a relation.Store backed by Kubernetes ConfigMaps.
type Store struct {
	kube      client.Interface
	namespace string
	component string
	version   string
}

var _ relation.Store = (*Store)(nil)

// New creates a Store writing as the given component in the given
// namespace. The version is only used for ConfigMap labels.
func New(kube client.Interface, namespace, component, version string) *Store {
	return &Store{
		kube:      kube,
		namespace: namespace,
		component: component,
		version:   version,
	}
}

// NewFromKubeconfig creates a Store using the shared singleton client,
// or a dedicated client when kubeconfig is non-empty.
func NewFromKubeconfig(kubeconfig, namespace, component, version string) (*Store, error) {
	var kube client.Interface
	var err error
	if kubeconfig == "" {
		kube, _, err = client.GetKubeClient()
	} else {
		kube, _, err = client.GetKubeClientWithConfig(kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	return New(kube, namespace, component, version), nil
}

// Name returns the ConfigMap name for a relationship. Both sides of a
// relationship must compute the same name, so only the relation part
// of the key participates.
func Name(key relation.Key) string {
	return namePrefix + key.Relation
}

// dataKey is the ConfigMap data key a component publishes a field under.
func dataKey(component, field string) string {
	return component + "." + field
}

// Get reads the field the remote side of key published into the
// relationship ConfigMap. A missing ConfigMap or data key means the
// peer has not published yet.
func (s *Store) Get(ctx context.Context, key relation.Key, field string) (string, bool, error) {
	cm, err := s.kube.CoreV1().ConfigMaps(s.namespace).Get(ctx, Name(key), metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read relationship ConfigMap %s: %w", Name(key), err)
	}

	value, ok := cm.Data[dataKey(key.Remote, field)]
	return value, ok, nil
}

// Set publishes the field for this component's side of key via
// server-side apply. Only this component's data keys are part of the
// apply configuration, so peer-owned keys are never clobbered.
func (s *Store) Set(ctx context.Context, key relation.Key, field, value string) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	cm := accorev1.ConfigMap(Name(key), s.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "skewguard",
			"app.kubernetes.io/component": s.component,
			"app.kubernetes.io/version":   s.version,
		}).
		WithData(map[string]string{
			dataKey(s.component, field): value,
		})

	slog.Debug("applying relationship ConfigMap",
		"namespace", s.namespace,
		"name", Name(key),
		"field", field)

	_, err := s.kube.CoreV1().ConfigMaps(s.namespace).Apply(
		writeCtx,
		cm,
		metav1.ApplyOptions{
			FieldManager: fieldManagerPrefix + s.component,
			Force:        true,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply relationship ConfigMap %s: %w", Name(key), err)
	}

	return nil
}
