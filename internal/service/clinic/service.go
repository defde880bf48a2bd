// Package clinic holds the dental clinic aggregate: the registered patients, dentists,
// appointments and the observers told about every new appointment.
package clinic

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/jwalitptl/dental-clinic/internal/model"
	"github.com/jwalitptl/dental-clinic/internal/service/notification"
	"github.com/jwalitptl/dental-clinic/pkg/errors"
	"github.com/jwalitptl/dental-clinic/pkg/logger"
	"github.com/jwalitptl/dental-clinic/pkg/metrics"
)

const notAvailable = "N/A"

type Clinic struct {
	mu           sync.RWMutex
	patients     []model.Patient
	dentists     []model.Dentist
	appointments []model.Appointment
	observers    []notification.Observer

	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	out     io.Writer
}

type Option func(*Clinic)

func WithLogger(l *logger.Logger) Option {
	return func(c *Clinic) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Clinic) { c.metrics = m }
}

// WithClock sets the source of "now" used for ages and upcoming appointments.
func WithClock(now func() time.Time) Option {
	return func(c *Clinic) { c.now = now }
}

// WithOutput sets where PrintPatients and PrintAppointments write.
func WithOutput(w io.Writer) Option {
	return func(c *Clinic) { c.out = w }
}

func New(opts ...Option) *Clinic {
	c := &Clinic{
		logger: logger.Nop(),
		now:    time.Now,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clinic) AddObserver(o notification.Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// RemoveObserver drops the first registered observer equal to o. Unknown observers are ignored.
func (c *Clinic) RemoveObserver(o notification.Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, registered := range c.observers {
		if sameObserver(registered, o) {
			c.observers = slices.Delete(c.observers, i, i+1)
			return
		}
	}
}

// sameObserver compares by dynamic value, so a comparable type holding a slice or map
// through an interface field never reaches ==.
func sameObserver(a, b notification.Observer) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if a == nil {
		return true
	}
	return reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() && a == b
}

func (c *Clinic) AddPatient(p model.Patient) {
	c.mu.Lock()
	c.patients = append(c.patients, p)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.PatientsRegistered.Inc()
	}
	c.logger.Debug("patient registered", "patient_id", p.ID)
}

func (c *Clinic) AddDentist(d model.Dentist) {
	c.mu.Lock()
	c.dentists = append(c.dentists, d)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.DentistsRegistered.Inc()
	}
	c.logger.Debug("dentist registered", "dentist_id", d.ID)
}

// AddAppointment stores apt and then notifies every observer in registration order.
// The upcoming-appointments gauge is refreshed here, as of the clinic's clock.
// An observer that fails or panics does not stop the others; the returned error combines
// one ErrNotification per failed observer. The appointment stays stored either way.
func (c *Clinic) AddAppointment(ctx context.Context, apt model.Appointment) error {
	today := model.DateOf(c.now())

	c.mu.Lock()
	c.appointments = append(c.appointments, apt)
	observers := slices.Clone(c.observers)
	upcoming := 0
	for _, a := range c.appointments {
		if !model.DateOf(a.Date).Before(today) {
			upcoming++
		}
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.AppointmentsRegistered.Inc()
		c.metrics.UpcomingAppointments.Set(float64(upcoming))
	}
	c.logger.Debug("appointment registered",
		"appointment_id", apt.ID, "dentist_id", apt.Dentist.ID, "observers", len(observers))

	var errs error
	for _, o := range observers {
		if err := c.notify(ctx, o, apt); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (c *Clinic) notify(ctx context.Context, o notification.Observer, apt model.Appointment) (err error) {
	channel := notification.Channel(o)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Notification(channel, fmt.Errorf("panic: %v", r))
			c.logger.Error(err, "observer panicked",
				"appointment_id", apt.ID, "stack", string(debug.Stack()))
		}
		if c.metrics != nil {
			status := metrics.StatusSuccess
			if err != nil {
				status = metrics.StatusError
			}
			c.metrics.Notifications.WithLabelValues(channel, status).Inc()
			c.metrics.NotificationLatency.WithLabelValues(channel).Observe(time.Since(start).Seconds())
		}
	}()

	if nerr := o.OnNewAppointment(ctx, apt); nerr != nil {
		c.logger.Error(nerr, "observer failed", "observer", channel, "appointment_id", apt.ID)
		return errors.Notification(channel, nerr)
	}
	return nil
}

// FindPatientsByName returns patients whose name contains name, ignoring case.
func (c *Clinic) FindPatientsByName(name string) []model.Patient {
	needle := strings.ToLower(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	found := []model.Patient{}
	for _, p := range c.patients {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			found = append(found, p)
		}
	}
	return found
}

func (c *Clinic) AppointmentsByDentist(dentistID int) []model.Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found := []model.Appointment{}
	for _, a := range c.appointments {
		if a.Dentist.ID == dentistID {
			found = append(found, a)
		}
	}
	return found
}

// UpcomingAppointments returns appointments dated today or later, earliest first.
// Appointments on the same date keep their registration order.
func (c *Clinic) UpcomingAppointments() []model.Appointment {
	today := model.DateOf(c.now())

	c.mu.RLock()
	upcoming := []model.Appointment{}
	for _, a := range c.appointments {
		if !model.DateOf(a.Date).Before(today) {
			upcoming = append(upcoming, a)
		}
	}
	c.mu.RUnlock()

	slices.SortStableFunc(upcoming, func(a, b model.Appointment) int {
		return model.DateOf(a.Date).Compare(model.DateOf(b.Date))
	})
	return upcoming
}

func (c *Clinic) Patients() []model.Patient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.patients)
}

func (c *Clinic) Dentists() []model.Dentist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.dentists)
}

func (c *Clinic) Appointments() []model.Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.appointments)
}

func (c *Clinic) PrintPatients() error {
	now := c.now()
	for _, p := range c.Patients() {
		_, err := fmt.Fprintf(c.out, "ID: %d, Name: %s, DOB: %s, Age: %d, Phone: %s\n",
			p.ID, p.Name, model.FormatDate(p.DateOfBirth), p.Age(now), orNA(p.PhoneNumber))
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Clinic) PrintAppointments() error {
	for _, a := range c.Appointments() {
		_, err := fmt.Fprintf(c.out, "Appointment ID: %d, Patient: %s, Dentist: %s, Date: %s, Notes: %s, Services: %s\n",
			a.ID, a.Patient.Name, a.Dentist.Name, model.FormatDate(a.Date), orNA(a.Notes), strings.Join(a.Services, ", "))
		if err != nil {
			return err
		}
	}
	return nil
}

func orNA(s *string) string {
	if s == nil {
		return notAvailable
	}
	return *s
}
