package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-clinic/internal/model"
)

type EventType string

const (
	AppointmentCreated EventType = "APPOINTMENT_CREATED"
)

// AppointmentEvent is the broker payload emitted when the clinic registers an appointment.
type AppointmentEvent struct {
	ID            uuid.UUID `json:"id"`
	EventType     EventType `json:"event_type"`
	AppointmentID int       `json:"appointment_id"`
	PatientID     int       `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	DentistID     int       `json:"dentist_id"`
	DentistName   string    `json:"dentist_name"`
	Date          string    `json:"date"`
	Notes         *string   `json:"notes,omitempty"`
	Services      []string  `json:"services"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewAppointmentCreated(apt model.Appointment, now time.Time) *AppointmentEvent {
	services := apt.Services
	if services == nil {
		services = []string{}
	}
	return &AppointmentEvent{
		ID:            uuid.New(),
		EventType:     AppointmentCreated,
		AppointmentID: apt.ID,
		PatientID:     apt.Patient.ID,
		PatientName:   apt.Patient.Name,
		DentistID:     apt.Dentist.ID,
		DentistName:   apt.Dentist.Name,
		Date:          model.FormatDate(apt.Date),
		Notes:         apt.Notes,
		Services:      services,
		CreatedAt:     now,
	}
}
