package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcome labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the clinic's collectors
type Metrics struct {
	PatientsRegistered     prometheus.Counter
	DentistsRegistered     prometheus.Counter
	AppointmentsRegistered prometheus.Counter
	UpcomingAppointments   prometheus.Gauge

	Notifications       *prometheus.CounterVec
	NotificationLatency *prometheus.HistogramVec
}

// New creates the clinic metrics and registers them with reg. A nil reg leaves them unregistered.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PatientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_registered_total",
			Help:      "Total number of patients added to the clinic",
		}),
		DentistsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dentists_registered_total",
			Help:      "Total number of dentists added to the clinic",
		}),
		AppointmentsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_registered_total",
			Help:      "Total number of appointments added to the clinic",
		}),
		UpcomingAppointments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upcoming_appointments",
			Help:      "Number of appointments dated today or later as of the last registration",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Appointment observer notifications by observer and outcome",
		}, []string{"observer", "status"}),
		NotificationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_duration_seconds",
			Help:      "Time spent inside each appointment observer",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"observer"}),
	}
}
