package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // PlanRuns counts fleet optimization runs by outcome
    PlanRuns = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "plan_runs_total", Help: "Fleet optimization runs by outcome."},
        []string{"outcome"},
    )
    // PlanDuration tracks end-to-end optimization wall time in seconds
    PlanDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "plan_duration_seconds", Help: "Fleet optimization duration in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}},
    )
    // PairsEvaluated counts vessel/cargo pairs that reached the grid search
    PairsEvaluated = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "pairs_evaluated_total", Help: "Vessel/cargo pairs that reached the parametric search."},
    )
    // PairsExcluded counts pairs rejected before the grid search, by reason
    PairsExcluded = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "pairs_excluded_total", Help: "Vessel/cargo pairs excluded before the parametric search."},
        []string{"reason"},
    )

    // WebhookDeliveries counts webhook delivery outcomes by event type and status
    WebhookDeliveries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
        []string{"event_type", "status"},
    )
    // WebhookLatency tracks webhook delivery latencies in milliseconds
    WebhookLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
        []string{"event_type", "status"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(PlanRuns)
        Registry.MustRegister(PlanDuration)
        Registry.MustRegister(PairsEvaluated)
        Registry.MustRegister(PairsExcluded)
        Registry.MustRegister(WebhookDeliveries)
        Registry.MustRegister(WebhookLatency)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
