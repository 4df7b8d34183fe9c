// Copyright (c) 2026 Leafn Labs
//
// This file is part of go-secure-enclave.
//
// go-secure-enclave is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@leafn.dev for commercial licensing options.

// Package metrics provides Prometheus instrumentation for trust-boundary
// operations: per-operation counters, latency histograms, error counters
// keyed by typed error, and presence-prompt outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the Prometheus namespace for all enclave metrics
	Namespace = "enclave"

	// Label names
	LabelOperation = "operation"
	LabelElement   = "element"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelResult    = "result"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpCreateKeyPair = "create_key_pair"
	OpFind          = "find"
	OpDelete        = "delete"
	OpReplace       = "replace"
	OpSign          = "sign"
	OpVerify        = "verify"

	// Presence prompt results
	PresenceApproved = "approved"
	PresenceCanceled = "canceled"
	PresenceFailed   = "failed"
)

var (
	// OperationsTotal tracks trust-boundary operations by type, element, and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of trust-boundary operations by type, element, and status",
		},
		[]string{LabelOperation, LabelElement, LabelStatus},
	)

	// OperationDuration tracks trust-boundary operation latency in seconds.
	// The upper buckets cover presence prompts, which block on human input.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of trust-boundary operations in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{LabelOperation, LabelElement},
	)

	// ErrorsTotal tracks typed errors surfaced to callers.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of typed errors surfaced by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// PresencePromptsTotal tracks user-presence verification outcomes.
	PresencePromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "presence_prompts_total",
			Help:      "Total number of user presence prompts by result",
		},
		[]string{LabelResult},
	)
)

// RecordOperation increments the operation counter with the given labels.
func RecordOperation(operation, element string, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, element, status).Inc()
}

// RecordError increments the error counter for a typed error.
func RecordError(operation, errorType string) {
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordPresencePrompt records the outcome of a user presence prompt.
func RecordPresencePrompt(result string) {
	PresencePromptsTotal.WithLabelValues(result).Inc()
}

// Timer observes operation duration. Use with defer:
//
//	defer metrics.Timer(metrics.OpSign, element)()
func Timer(operation, element string) func() {
	t := prometheus.NewTimer(OperationDuration.WithLabelValues(operation, element))
	return func() { t.ObserveDuration() }
}

// Handler returns an HTTP handler exposing the metrics registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
