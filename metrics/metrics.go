package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	SignalsTracked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signalvantage",
			Subsystem: "tracker",
			Name:      "signals_tracked_total",
			Help:      "Signals evaluated against a live price",
		},
	)

	SignalsTransitioned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalvantage",
			Subsystem: "tracker",
			Name:      "signals_transitioned_total",
			Help:      "Terminal transitions applied, by resulting status",
		},
		[]string{"status"},
	)

	PassErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalvantage",
			Subsystem: "tracker",
			Name:      "pass_errors_total",
			Help:      "Errors swallowed during tracking passes, by kind",
		},
		[]string{"kind"},
	)

	BacktestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalvantage",
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Backtest recomputations, by category",
		},
		[]string{"category"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SignalsTracked, SignalsTransitioned, PassErrors, BacktestRuns)
	})
}

// Serve exposes /metrics on the given address in the background.
func Serve(addr string) {
	Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
