package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// NotifyMetrics counts instrumented operations by channel and outcome.
type NotifyMetrics struct {
	Events        *prometheus.CounterVec
	RenderErrors  *prometheus.CounterVec
	PublishErrors *prometheus.CounterVec
}

func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	m := &NotifyMetrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Operations observed by a notifier.",
		}, []string{"channel", "outcome"}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "render_errors_total",
			Help:      "Notification templates that failed to execute.",
		}, []string{"channel"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "publish_errors_total",
			Help:      "Notifications whose broadcast hit a delivery fault.",
		}, []string{"channel"}),
	}

	reg.MustRegister(m.Events, m.RenderErrors, m.PublishErrors)
	return m
}
