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

package api

import (
	"strings"

	"github.com/skewguard/skewguard/pkg/errors"
	"github.com/skewguard/skewguard/pkg/relation"
	"github.com/skewguard/skewguard/pkg/relation/configmap"
)

const (
	// MemoryStoreURI selects the in-process store, for tests and dry runs.
	MemoryStoreURI = "memory://"

	// ConfigMapURIScheme prefixes ConfigMap store URIs: cm://<namespace>.
	ConfigMapURIScheme = "cm://"
)

// OpenStore resolves a store URI into a relation store writing as the
// given component. Supported URIs are "memory://" and
// "cm://<namespace>".
func OpenStore(uri, kubeconfig, component, version string) (relation.Store, error) {
	switch {
	case uri == "" || uri == MemoryStoreURI:
		return relation.NewMemoryStore(), nil

	case strings.HasPrefix(uri, ConfigMapURIScheme):
		namespace := strings.TrimPrefix(uri, ConfigMapURIScheme)
		namespace = strings.Trim(namespace, "/")
		if namespace == "" {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"ConfigMap store URI is missing a namespace",
				map[string]any{"uri": uri})
		}
		return configmap.NewFromKubeconfig(kubeconfig, namespace, component, version)

	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unknown store URI scheme",
			map[string]any{"uri": uri})
	}
}
