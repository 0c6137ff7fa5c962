// Package metrics exposes Prometheus collectors for RPCs, authentication
// outcomes and generation calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "letterdesk_rpc_requests_total",
		Help: "Total number of gRPC requests",
	}, []string{"method", "code"})

	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "letterdesk_rpc_request_duration_seconds",
		Help:    "Duration of gRPC requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "letterdesk_auth_events_total",
		Help: "Authentication events by kind and result",
	}, []string{"event", "result"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "letterdesk_generation_duration_seconds",
		Help:    "Duration of draft generation calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"result"})

	affiliateCredits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "letterdesk_affiliate_credits_total",
		Help: "Affiliate credit attempts by result",
	}, []string{"result"})
)

// ObserveRPC records one finished RPC.
func ObserveRPC(method, code string, duration time.Duration) {
	rpcRequestsTotal.WithLabelValues(method, code).Inc()
	rpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveAuth counts signup, login, logout, refresh and reset outcomes.
func ObserveAuth(event, result string) {
	authEvents.WithLabelValues(event, result).Inc()
}

func ObserveGeneration(result string, duration time.Duration) {
	generationDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func ObserveAffiliateCredit(result string) {
	affiliateCredits.WithLabelValues(result).Inc()
}
