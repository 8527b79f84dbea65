package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "menus"

var (
	// OrphanedRestaurants counts restaurants created without a successful owner link.
	OrphanedRestaurants = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_restaurants_total",
		Help:      "Restaurants created whose owner profile link failed.",
	})

	// SessionEvents counts session transitions by type.
	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Session state transitions emitted by the auth provider.",
	}, []string{"type"})
)
