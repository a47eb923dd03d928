// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ReportGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_generations_total",
			Help: "Report aggregations actually executed",
		},
		[]string{"kind"},
	)

	ReportCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_hits_total",
			Help: "Report requests answered from the cache",
		},
		[]string{"kind"},
	)

	ReportSingleflightSharedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_singleflight_shared_total",
			Help: "Report requests that joined an in-flight generation",
		},
		[]string{"kind"},
	)

	KPIEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_evaluations_total",
			Help: "KPI evaluations by resulting status",
		},
		[]string{"status"},
	)

	KPIEvaluationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kpi_evaluation_duration_seconds",
			Help:    "Duration of a single KPI evaluation",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	MigrationRevisionsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migration_revisions_applied_total",
			Help: "Schema revisions applied or reverted",
		},
		[]string{"direction"},
	)

	domainMetricsOnce sync.Once
)

// RegisterDomainMetrics registers the service collectors once per process.
func RegisterDomainMetrics(registry *prometheus.Registry) {
	domainMetricsOnce.Do(func() {
		registry.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			ReportGenerationsTotal,
			ReportCacheHitsTotal,
			ReportSingleflightSharedTotal,
			KPIEvaluationsTotal,
			KPIEvaluationDurationSeconds,
			MigrationRevisionsAppliedTotal,
		)
	})
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveKPIEvaluation(status string, elapsed time.Duration) {
	KPIEvaluationsTotal.WithLabelValues(status).Inc()
	KPIEvaluationDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveMigration matches migrate.Observer.
func ObserveMigration(direction, _ string, _ time.Duration) {
	MigrationRevisionsAppliedTotal.WithLabelValues(direction).Inc()
}
