// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_digest_llm_requests_total",
			Help: "Completion requests by provider, model and outcome.",
		},
		[]string{"provider", "model", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paper_digest_llm_request_duration_seconds",
			Help:    "Completion request latency.",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider", "model"},
	)
	promptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paper_digest_llm_prompt_tokens",
			Help:    "Prompt token counts reported by the provider.",
			Buckets: prometheus.LinearBuckets(250, 250, 12),
		},
		[]string{"provider", "model"},
	)
	completionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paper_digest_llm_completion_tokens",
			Help:    "Completion token counts reported by the provider.",
			Buckets: prometheus.LinearBuckets(100, 100, 15),
		},
		[]string{"provider", "model"},
	)
)
