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

package configmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/skewguard/skewguard/pkg/relation"
)

func TestName(t *testing.T) {
	key := relation.Key{Relation: "cluster", Remote: "config-server"}
	assert.Equal(t, "skew-rel-cluster", Name(key))

	// Both sides of a relationship resolve to the same ConfigMap.
	peer := relation.Key{Relation: "cluster", Remote: "shard-one"}
	assert.Equal(t, Name(key), Name(peer))
}

func TestGetAbsentConfigMap(t *testing.T) {
	store := New(fake.NewClientset(), "db", "shard-one", "2.15.0")

	value, ok, err := store.Get(context.Background(), relation.Key{Relation: "cluster", Remote: "config-server"}, relation.FieldVersion)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	kube := fake.NewClientset()
	key := relation.Key{Relation: "cluster", Remote: "config-server"}

	own := New(kube, "db", "shard-one", "2.15.0")
	require.NoError(t, own.Set(ctx, key, relation.FieldVersion, "2.15.0"))
	require.NoError(t, own.Set(ctx, key, relation.FieldDeployment, relation.DeploymentReleased))

	// The peer reads shard-one's side of the same relationship.
	peer := New(kube, "db", "config-server", "2.15.0")
	peerKey := relation.Key{Relation: "cluster", Remote: "shard-one"}

	value, ok, err := peer.Get(ctx, peerKey, relation.FieldVersion)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2.15.0", value)

	value, ok, err = peer.Get(ctx, peerKey, relation.FieldDeployment)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, relation.DeploymentReleased, value)
}

func TestGetReadsExistingConfigMap(t *testing.T) {
	// A ConfigMap written by another component's field manager.
	kube := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "skew-rel-cluster",
			Namespace: "db",
		},
		Data: map[string]string{
			"config-server.version": "2.14.0",
		},
	})

	store := New(kube, "db", "shard-one", "2.15.0")

	value, ok, err := store.Get(context.Background(), relation.Key{Relation: "cluster", Remote: "config-server"}, relation.FieldVersion)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2.14.0", value)
}

func TestSetAppliesLabels(t *testing.T) {
	ctx := context.Background()
	kube := fake.NewClientset()
	key := relation.Key{Relation: "cluster", Remote: "config-server"}

	store := New(kube, "db", "shard-one", "2.15.0")
	require.NoError(t, store.Set(ctx, key, relation.FieldVersion, "2.15.0"))

	cm, err := kube.CoreV1().ConfigMaps("db").Get(ctx, "skew-rel-cluster", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "skewguard", cm.Labels["app.kubernetes.io/name"])
	assert.Equal(t, "shard-one", cm.Labels["app.kubernetes.io/component"])
}

func TestGetAbsentField(t *testing.T) {
	ctx := context.Background()
	kube := fake.NewClientset()
	key := relation.Key{Relation: "cluster", Remote: "config-server"}

	own := New(kube, "db", "shard-one", "2.15.0")
	require.NoError(t, own.Set(ctx, key, relation.FieldVersion, "2.15.0"))

	// The ConfigMap exists but the peer never published.
	value, ok, err := own.Get(ctx, key, relation.FieldVersion)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetIdempotent(t *testing.T) {
	ctx := context.Background()
	kube := fake.NewClientset()
	key := relation.Key{Relation: "cluster", Remote: "config-server"}

	store := New(kube, "db", "shard-one", "2.15.0")
	require.NoError(t, store.Set(ctx, key, relation.FieldVersion, "2.15.0"))
	require.NoError(t, store.Set(ctx, key, relation.FieldVersion, "2.15.0"))

	value, ok, err := New(kube, "db", "x", "2.15.0").Get(ctx, relation.Key{Relation: "cluster", Remote: "shard-one"}, relation.FieldVersion)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2.15.0", value)
}
