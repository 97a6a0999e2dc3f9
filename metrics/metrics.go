// Package metrics exposes scanner counters over an optional /metrics
// endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Iterations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxscan_iterations_total",
		Help: "Scan iterations completed, by account.",
	}, []string{"account"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxscan_fetch_errors_total",
		Help: "Price or account fetch failures, by account.",
	}, []string{"account"})

	Signals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxscan_signals_total",
		Help: "Signals produced, by account and instrument.",
	}, []string{"account", "instrument"})

	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxscan_orders_submitted_total",
		Help: "Orders accepted by the broker, by account and instrument.",
	}, []string{"account", "instrument"})

	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxscan_orders_rejected_total",
		Help: "Orders rejected by the broker, by account and instrument.",
	}, []string{"account", "instrument"})

	Skips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fxscan_skips_total",
		Help: "Signals skipped before submission, by reason.",
	}, []string{"account", "reason"})

	AccountBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fxscan_account_balance",
		Help: "Last observed account balance.",
	}, []string{"account"})
)

// Serve starts the metrics listener. It blocks; run it in its own goroutine.
func Serve(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}
