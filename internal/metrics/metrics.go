// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the Prometheus collectors shared by the gateway
// client, the onboarding sequencer and the webhook receiver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names.
const (
	namespace = "greenchat"

	MetricNameGatewayRequestsTotal   = "gateway_requests_total"
	MetricNameGatewayRequestDuration = "gateway_request_duration_seconds"
	MetricNameOnboardingRunsTotal    = "onboarding_runs_total"
	MetricNameNotificationsTotal     = "notifications_total"
	MetricNameWebhookEventsTotal     = "webhook_events_total"
	MetricNameHTTPRequestsTotal      = "http_requests_total"
	MetricNameHTTPRequestDuration    = "http_request_duration_seconds"
)

// Label names.
const (
	LabelMethod  = "method"
	LabelKind    = "kind"
	LabelOutcome = "outcome"
	LabelType    = "type"
	LabelPath    = "path"
	LabelStatus  = "status"
)

// Gateway call latency buckets, in seconds. receiveNotification long-polls
// for several seconds so the upper buckets are wide.
var GatewayLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Gateway client metrics.
var (
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameGatewayRequestsTotal,
			Help:      "Total number of gateway API calls by method and result kind",
		},
		[]string{LabelMethod, LabelKind},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      MetricNameGatewayRequestDuration,
			Help:      "Gateway API call latency in seconds",
			Buckets:   GatewayLatencyBuckets,
		},
		[]string{LabelMethod},
	)
)

// Onboarding and inbox metrics.
var (
	OnboardingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameOnboardingRunsTotal,
			Help:      "Total number of onboarding runs by outcome",
		},
		[]string{LabelOutcome},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameNotificationsTotal,
			Help:      "Total number of gateway notifications consumed by webhook type",
		},
		[]string{LabelType},
	)
)

// Webhook receiver metrics.
var (
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameWebhookEventsTotal,
			Help:      "Total number of webhook deliveries by type",
		},
		[]string{LabelType},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricNameHTTPRequestsTotal,
			Help:      "Total number of HTTP requests served",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      MetricNameHTTPRequestDuration,
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)
