// Package observability provides application metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthEvents counts session transitions by event and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_auth_events_total",
		Help: "Session transitions by event (sign_up, log_in, log_out, change_password) and outcome",
	}, []string{"event", "outcome"})

	// FollowToggles counts follow edge flips by resulting action.
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_follow_toggles_total",
		Help: "Follow toggles by action (follow, unfollow, self)",
	}, []string{"action"})

	// PostsCreated counts persisted posts, split by whether an image was attached.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_posts_created_total",
		Help: "Posts created",
	}, []string{"with_image"})

	// SearchResults observes how many rows a search returned.
	SearchResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postline_search_results",
		Help:    "Number of results returned per search by kind",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	}, []string{"kind"})
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// RecordAuth increments AuthEvents.
func RecordAuth(event, outcome string) {
	AuthEvents.WithLabelValues(event, outcome).Inc()
}
