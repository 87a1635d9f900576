package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for conversation turns.
type ConversationMetrics struct {
	eventsTotal       *prometheus.CounterVec
	instructionsTotal *prometheus.CounterVec
	turnLatency       *prometheus.HistogramVec
	lookupsTotal      *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unichat",
			Subsystem: "conversation",
			Name:      "inbound_events_total",
			Help:      "Total inbound conversation events",
		}, []string{"channel", "event", "status"}),
		instructionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unichat",
			Subsystem: "conversation",
			Name:      "instructions_total",
			Help:      "Total outbound render instructions",
		}, []string{"channel", "shape"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unichat",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unichat",
			Subsystem: "conversation",
			Name:      "student_lookups_total",
			Help:      "Total student record lookups",
		}, []string{"kind", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.instructionsTotal, m.turnLatency, m.lookupsTotal)
	return m
}

func (m *ConversationMetrics) ObserveEvent(channel, event, status string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(channel, event, status).Inc()
}

func (m *ConversationMetrics) ObserveInstruction(channel, shape string) {
	if m == nil {
		return
	}
	m.instructionsTotal.WithLabelValues(channel, shape).Inc()
}

func (m *ConversationMetrics) ObserveTurnLatency(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *ConversationMetrics) ObserveLookup(kind, outcome string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(kind, outcome).Inc()
}
