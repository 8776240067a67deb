// internal/monitor/monitor.go
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service-level counters. Registered once at package init; safe to increment
// from any goroutine.
var (
	MatchesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cardclash",
		Name:      "matches_created_total",
		Help:      "Total number of matches created",
	})
	RoundsResolved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cardclash",
		Name:      "rounds_resolved_total",
		Help:      "Total number of rounds resolved",
	})
	MatchesFinished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cardclash",
		Name:      "matches_finished_total",
		Help:      "Total number of matches that reached the finished state",
	})
	NotifierAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cardclash",
		Name:      "notifier_attempts_total",
		Help:      "Total ledger notification attempts, including retries",
	})
	NotifierFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cardclash",
		Name:      "notifier_failures_total",
		Help:      "Ledger notifications that exhausted all retry attempts",
	})
)

func init() {
	prometheus.MustRegister(
		MatchesCreated,
		RoundsResolved,
		MatchesFinished,
		NotifierAttempts,
		NotifierFailures,
	)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
