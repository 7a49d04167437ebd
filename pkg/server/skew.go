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
	"log/slog"
	"net/http"
	"time"

	"github.com/skewguard/skewguard/pkg/serializer"
)

// ValidityResponse is the body of GET /v1/skew/valid.
type ValidityResponse struct {
	Component string    `json:"component"`
	Valid     bool      `json:"valid"`
	Invalid   int       `json:"invalid"`
	Absent    int       `json:"absent"`
	Timestamp time.Time `json:"timestamp"`
}

// handleSkew handles GET /v1/skew. The report is computed from live
// store reads on every request.
func (s *Server) handleSkew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, nil)
		return
	}

	report, err := s.checker.Report(r.Context())
	if err != nil {
		slog.Error("skew check failed",
			"error", err,
			"requestID", r.Context().Value(contextKeyRequestID))
		s.writeError(w, r, http.StatusInternalServerError, ErrCodeCheckFailed,
			"Skew check failed", true, nil)
		return
	}

	recordReport(report)
	serializer.RespondJSON(w, http.StatusOK, report)
}

// handleSkewValid handles GET /v1/skew/valid. A failing check answers
// 409 so probes and gates can branch on the status code alone.
func (s *Server) handleSkewValid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, nil)
		return
	}

	report, err := s.checker.Report(r.Context())
	if err != nil {
		slog.Error("skew check failed",
			"error", err,
			"requestID", r.Context().Value(contextKeyRequestID))
		s.writeError(w, r, http.StatusInternalServerError, ErrCodeCheckFailed,
			"Skew check failed", true, nil)
		return
	}

	recordReport(report)

	status := http.StatusOK
	if !report.Valid() {
		status = http.StatusConflict
	}

	serializer.RespondJSON(w, status, ValidityResponse{
		Component: report.Component,
		Valid:     report.Valid(),
		Invalid:   report.Summary.Invalid,
		Absent:    report.Summary.Absent,
		Timestamp: time.Now().UTC(),
	})
}
