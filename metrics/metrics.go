// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geoform"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// GeocoderDuration observes each upstream geocoding call.
	GeocoderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "geocoder",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the geocoding service",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"status"})

	// GeocoderShared counts lookups answered by an identical in-flight call.
	GeocoderShared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "geocoder",
		Name:      "shared_lookups_total",
		Help:      "Lookups that reused the response of an identical in-flight lookup",
	})

	// SearchOutcomes counts applied searches by outcome kind.
	SearchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "outcomes_total",
		Help:      "Searches by outcome (success, empty, failure)",
	}, []string{"outcome"})

	// StaleResponses counts responses discarded because a newer search was issued.
	StaleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "stale_responses_total",
		Help:      "Responses discarded because a more recent search was issued in the same session",
	})

	// ActiveSessions tracks the number of live form sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Current number of form sessions held in memory",
	})
)

// Middleware records request count and latency using the route pattern as
// path label, so /results/:row/toggle doesn't explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
