package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeStored   = "stored"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Metrics counts profile share mutations
type Metrics struct {
	logoUploads *prometheus.CounterVec
	logoRemoved prometheus.Counter
	updates     *prometheus.CounterVec
}

// NewMetrics registers the profile share counters on reg. A nil reg gives
// counters that are never exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		logoUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_share_logo_uploads_total",
			Help: "Logo uploads by outcome.",
		}, []string{"outcome"}),
		logoRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "profile_share_logo_removals_total",
			Help: "Logo removals.",
		}),
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_share_updates_total",
			Help: "Profile share updates by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) upload(outcome string) {
	m.logoUploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) update(kind, outcome string) {
	m.updates.WithLabelValues(kind, outcome).Inc()
}
