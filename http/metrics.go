package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the app's prometheus counters. Each Server owns its own
// registry so that constructing several servers (tests do) never trips
// over duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	MessagesSent       prometheus.Counter
	FollowRequests     prometheus.Counter
	UnfollowRequests   prometheus.Counter
	LikeToggles        prometheus.Counter
}

// InitMetrics creates and registers all counters.
func InitMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warbler_successful_requests_total",
				Help: "Total number of successful (non-4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warbler_unsuccessful_requests_total",
				Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_messages_sent_total",
			Help: "Total number of successfully posted messages",
		}),
		FollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_follows_total",
			Help: "Total number of successful follow requests",
		}),
		UnfollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_unfollows_total",
			Help: "Total number of successful unfollow requests",
		}),
		LikeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warbler_like_toggles_total",
			Help: "Total number of like toggles",
		}),
	}

	m.registry.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.MessagesSent,
		m.FollowRequests,
		m.UnfollowRequests,
		m.LikeToggles,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// The instrument middleware counts every request as successful or not,
// labeled by path.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status < 400 {
			s.metrics.SuccessfulRequests.WithLabelValues(r.URL.Path).Inc()
		} else {
			s.metrics.BadRequests.WithLabelValues(r.URL.Path).Inc()
		}
	})
}
