// Package metrics exposes the bot's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters the reconciliation pipeline increments.
type Metrics struct {
	ReactionsClassified *prometheus.CounterVec
	RoleMutations       *prometheus.CounterVec
	PointMutations      *prometheus.CounterVec
	DMsSent             prometheus.Counter
	DMsFailed           prometheus.Counter
}

// New registers the bot's collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ReactionsClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grammarbot",
			Name:      "reactions_classified_total",
			Help:      "Reaction events by classification outcome.",
		}, []string{"decision"}),
		RoleMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grammarbot",
			Name:      "role_mutations_total",
			Help:      "Role grant/revoke attempts by result.",
		}, []string{"op", "result"}),
		PointMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grammarbot",
			Name:      "point_mutations_total",
			Help:      "Point increments/decrements by result.",
		}, []string{"op", "result"}),
		DMsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "grammarbot",
			Name:      "dms_sent_total",
			Help:      "Successful role-change notification DMs.",
		}),
		DMsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "grammarbot",
			Name:      "dms_failed_total",
			Help:      "Role-change notification DMs that could not be delivered.",
		}),
	}
}
