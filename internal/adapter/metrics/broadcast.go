package metrics

import "github.com/prometheus/client_golang/prometheus"

// BroadcastMetrics tracks fan-out deliveries per channel.
type BroadcastMetrics struct {
	Deliveries  *prometheus.CounterVec
	Faults      *prometheus.CounterVec
	Subscribers *prometheus.GaugeVec
}

func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	m := &BroadcastMetrics{
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "deliveries_total",
			Help:      "Messages handed to a subscriber transport.",
		}, []string{"channel"}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "delivery_faults_total",
			Help:      "Deliveries rejected by a subscriber transport.",
		}, []string{"channel"}),
		Subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Subscribers currently connected per channel.",
		}, []string{"channel"}),
	}

	reg.MustRegister(m.Deliveries, m.Faults, m.Subscribers)
	return m
}
