package monitoring

import (
	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/moderation"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters for the appointment lifecycle and gauges for the
// moderation board. A nil *Metrics ignores every call.
type Metrics struct {
	submissions  *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	appointments *prometheus.GaugeVec
	refreshes    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg, or on the default registerer
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinique",
			Subsystem: "appointments",
			Name:      "submissions_total",
			Help:      "Appointment submissions by outcome",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinique",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Status change requests by target status and outcome",
		}, []string{"to", "outcome"}),
		appointments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "clinique",
			Subsystem: "board",
			Name:      "appointments",
			Help:      "Appointments on the moderation board at the last refresh",
		}, []string{"counter"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinique",
			Subsystem: "board",
			Name:      "refreshes_total",
			Help:      "Background board refreshes by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.transitions, m.appointments, m.refreshes)
	return m
}

func (m *Metrics) ObserveSubmit(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveTransition counts a status change request. Unknown target statuses
// share the "invalid" label so request bodies cannot mint new series.
func (m *Metrics) ObserveTransition(to models.AppointmentStatus, outcome string) {
	if m == nil {
		return
	}
	label := string(to)
	if !to.Valid() {
		label = "invalid"
	}
	m.transitions.WithLabelValues(label, outcome).Inc()
}

// ObserveBoard publishes the dashboard counters.
func (m *Metrics) ObserveBoard(c moderation.Counters) {
	if m == nil {
		return
	}
	m.appointments.WithLabelValues("total").Set(float64(c.Total))
	m.appointments.WithLabelValues("pending").Set(float64(c.Pending))
	m.appointments.WithLabelValues("today").Set(float64(c.Today))
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}
