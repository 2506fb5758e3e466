// Package instrument exposes the host's Prometheus metrics.
package instrument

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laptev_requests_total",
			Help: "Number of host requests by operation and result",
		},
		[]string{"op", "result"},
	)
	handshakes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "laptev_handshakes_total",
			Help: "Number of completed key exchanges",
		},
	)
	authentications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laptev_authentications_total",
			Help: "Number of password proofs by outcome",
		},
		[]string{"outcome"},
	)
	sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "laptev_sessions",
			Help: "Number of session table entries",
		},
	)
	sessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "laptev_sessions_expired_total",
			Help: "Number of sessions removed by expiry sweeps",
		},
	)
	recordingsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "laptev_recordings_expired_total",
			Help: "Number of recordings removed by the retention sweep",
		},
	)
)

func init() {
	prometheus.MustRegister(requests)
	prometheus.MustRegister(handshakes)
	prometheus.MustRegister(authentications)
	prometheus.MustRegister(sessions)
	prometheus.MustRegister(sessionsExpired)
	prometheus.MustRegister(recordingsExpired)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Request counts one finished host request.
func Request(op, result string) { requests.WithLabelValues(op, result).Inc() }

// Handshake counts one completed key exchange.
func Handshake() { handshakes.Inc() }

// Authentication counts one password proof.
func Authentication(ok bool) {
	if ok {
		authentications.WithLabelValues("success").Inc()
		return
	}
	authentications.WithLabelValues("failure").Inc()
}

// Sessions records the current session table size.
func Sessions(n int) { sessions.Set(float64(n)) }

// SessionsExpired counts sessions removed by a sweep.
func SessionsExpired(n int) { sessionsExpired.Add(float64(n)) }

// RecordingsExpired counts recordings removed by retention.
func RecordingsExpired(n int) { recordingsExpired.Add(float64(n)) }
