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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skewguard/skewguard/pkg/checker"
	"github.com/skewguard/skewguard/pkg/relation"
)

func newTestServer(t *testing.T, peerVersion string) *Server {
	t.Helper()

	store := relation.NewMemoryStore()
	key := relation.Key{Relation: "cluster", Remote: "config-server"}
	if peerVersion != "" {
		store.SetPeer(key, relation.FieldVersion, peerVersion)
	}

	chk, err := checker.New(store, checker.Config{
		Component:  "shard-one",
		OwnVersion: "2.15.0",
		Relations:  []relation.Key{key},
	})
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.Version = "test"
	return New(cfg, chk)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, "2.15.0")

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestHealthMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "2.15.0")

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReadyEndpoint(t *testing.T) {
	s := newTestServer(t, "2.15.0")

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)

	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultRoute(t *testing.T) {
	s := newTestServer(t, "2.15.0")
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleDefault(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name      string   `json:"name"`
		Component string   `json:"component"`
		Ready     bool     `json:"ready"`
		Routes    []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "skewguard", resp.Name)
	assert.Equal(t, "shard-one", resp.Component)
	assert.True(t, resp.Ready)
	assert.Contains(t, resp.Routes, "GET /v1/skew")
}

func TestSkewEndpoint(t *testing.T) {
	s := newTestServer(t, "2.15.0")

	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/skew", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var report checker.SkewReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "shard-one", report.Component)
	assert.Equal(t, checker.ReportStatusPass, report.Summary.Status)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "2.15.0", report.Entries[0].Observed)
}

func TestSkewEndpointMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "2.15.0")

	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/skew", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeMethodNotAllowed, resp.Code)
	assert.NotEmpty(t, resp.RequestID)
}

func TestSkewValidEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		peerVersion string
		wantStatus  int
		wantValid   bool
	}{
		{
			name:        "matching peer",
			peerVersion: "2.15.0",
			wantStatus:  http.StatusOK,
			wantValid:   true,
		},
		{
			name:        "mismatched peer",
			peerVersion: "2.14.0",
			wantStatus:  http.StatusConflict,
			wantValid:   false,
		},
		{
			name:        "absent peer",
			peerVersion: "",
			wantStatus:  http.StatusOK,
			wantValid:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tc.peerVersion)

			rec := httptest.NewRecorder()
			s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/skew/valid", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp ValidityResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantValid, resp.Valid)
			assert.Equal(t, "shard-one", resp.Component)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "2.15.0")

	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer(t, "2.15.0")
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	cancel()
	require.NoError(t, <-done)
}
