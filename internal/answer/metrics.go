package answer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	askRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Name:      "ask_requests_total",
			Help:      "Total answer pipeline runs",
		},
		[]string{"outcome"}, // "identity", "answered", "fallback"
	)

	askDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sage",
			Name:      "ask_duration_seconds",
			Help:      "Duration of full answer pipeline runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
	)

	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Name:      "llm_calls_total",
			Help:      "Total LLM API calls",
		},
		[]string{"stage", "status"}, // stage: "reasoning", "polish"
	)

	llmDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sage",
			Name:      "llm_duration_seconds",
			Help:      "Duration of LLM API calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"stage"},
	)

	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sage",
			Name:      "tool_calls_total",
			Help:      "Total tool dispatches issued by the model",
		},
		[]string{"tool", "status"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sage",
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool executions in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)
