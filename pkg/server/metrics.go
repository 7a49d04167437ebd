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
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/skewguard/skewguard/pkg/checker"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skew_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skew_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skew_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skew_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)

	panicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skew_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	// Skew check metrics, refreshed by the background loop and on
	// every served report.
	relationsInvalid = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skew_relations_invalid",
			Help: "Number of monitored relationships with an unacceptable peer version",
		},
	)

	relationsAbsent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skew_relations_absent",
			Help: "Number of monitored relationships whose peer has not published a version",
		},
	)

	checkValid = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skew_check_valid",
			Help: "Whether the last skew check passed (1) or failed (0)",
		},
	)

	checkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skew_check_duration_seconds",
			Help:    "Skew check latency in seconds, store reads included",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// recordReport updates the skew gauges from a completed check.
func recordReport(report *checker.SkewReport) {
	relationsInvalid.Set(float64(report.Summary.Invalid))
	relationsAbsent.Set(float64(report.Summary.Absent))
	if report.Valid() {
		checkValid.Set(1)
	} else {
		checkValid.Set(0)
	}
	checkDuration.Observe(report.Summary.Duration.Seconds())
}

// metricsMiddleware instruments HTTP requests with Prometheus metrics.
// It tracks request rate, errors, and duration (RED metrics).
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	}
}
