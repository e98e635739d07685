package metrics

import "github.com/prometheus/client_golang/prometheus"

// DonationMetrics counts donation lifecycle activity.
type DonationMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
}

// NewDonationMetrics registers donation metrics on the provided registerer.
func NewDonationMetrics(reg prometheus.Registerer) *DonationMetrics {
	if reg == nil {
		return &DonationMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "donations_created_total",
		Help: "Donations created.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_transitions_total",
		Help: "Donation status transitions by target status.",
	}, []string{"to_status"})
	reg.MustRegister(created, transitions)
	return &DonationMetrics{
		created:     created,
		transitions: transitions,
	}
}

// IncCreated increments the created counter.
func (d *DonationMetrics) IncCreated() {
	if d == nil || d.created == nil {
		return
	}
	d.created.Inc()
}

// IncTransition increments the transition counter for the target status.
func (d *DonationMetrics) IncTransition(toStatus string) {
	if d == nil || d.transitions == nil {
		return
	}
	d.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}
