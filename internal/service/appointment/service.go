package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/dental-clinic/internal/model"
	"github.com/jwalitptl/dental-clinic/internal/service/clinic"
	"github.com/jwalitptl/dental-clinic/pkg/errors"
)

// BookingRequest describes an appointment by patient name and dentist id rather than by value.
type BookingRequest struct {
	ID          int
	PatientName string
	DentistID   int
	// DefaultDentist is used when DentistID has no appointments in the clinic yet.
	DefaultDentist *model.Dentist
	Date           time.Time
	Notes          *string
	Services       []string
}

type Service struct {
	clinic *clinic.Clinic
}

func NewService(c *clinic.Clinic) *Service {
	return &Service{clinic: c}
}

// Book resolves the request against the clinic, builds the appointment and registers it.
// The patient is the first registered name match. The dentist is taken from the first
// appointment already booked with DentistID, falling back to DefaultDentist.
// Notification failures are returned alongside the stored appointment.
func (s *Service) Book(ctx context.Context, req BookingRequest) (model.Appointment, error) {
	patients := s.clinic.FindPatientsByName(req.PatientName)
	if len(patients) == 0 {
		return model.Appointment{}, errors.NewNotFound(fmt.Sprintf("patient %q", req.PatientName), nil)
	}

	dentist, err := s.resolveDentist(req)
	if err != nil {
		return model.Appointment{}, err
	}

	b := model.NewAppointmentBuilder().
		SetID(req.ID).
		SetPatient(patients[0]).
		SetDentist(dentist).
		SetNotes(req.Notes)
	if !req.Date.IsZero() {
		b.SetDate(req.Date)
	}
	for _, svc := range req.Services {
		b.AddService(svc)
	}

	apt, err := b.Build()
	if err != nil {
		return model.Appointment{}, fmt.Errorf("invalid appointment: %w", err)
	}

	if err := s.clinic.AddAppointment(ctx, apt); err != nil {
		return apt, fmt.Errorf("appointment %d stored, notifications failed: %w", apt.ID, err)
	}
	return apt, nil
}

func (s *Service) resolveDentist(req BookingRequest) (model.Dentist, error) {
	if existing := s.clinic.AppointmentsByDentist(req.DentistID); len(existing) > 0 {
		return existing[0].Dentist, nil
	}
	if req.DefaultDentist != nil {
		return *req.DefaultDentist, nil
	}
	return model.Dentist{}, errors.NewNotFound(fmt.Sprintf("dentist %d", req.DentistID), nil)
}
