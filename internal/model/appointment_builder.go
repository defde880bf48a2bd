package model

import (
	stderrors "errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/dental-clinic/pkg/errors"
)

var validate = validator.New()

// stagedAppointment holds builder input; required fields stay nil until set.
type stagedAppointment struct {
	ID       int
	Patient  *Patient   `validate:"required"`
	Dentist  *Dentist   `validate:"required"`
	Date     *time.Time `validate:"required"`
	Notes    *string
	Services []string
}

// AppointmentBuilder stages appointment fields. Setters return the builder for chaining.
type AppointmentBuilder struct {
	staged stagedAppointment
}

func NewAppointmentBuilder() *AppointmentBuilder {
	return &AppointmentBuilder{}
}

func (b *AppointmentBuilder) SetID(id int) *AppointmentBuilder {
	b.staged.ID = id
	return b
}

func (b *AppointmentBuilder) SetPatient(p Patient) *AppointmentBuilder {
	b.staged.Patient = &p
	return b
}

func (b *AppointmentBuilder) SetDentist(d Dentist) *AppointmentBuilder {
	b.staged.Dentist = &d
	return b
}

func (b *AppointmentBuilder) SetDate(date time.Time) *AppointmentBuilder {
	b.staged.Date = &date
	return b
}

func (b *AppointmentBuilder) SetNotes(notes *string) *AppointmentBuilder {
	b.staged.Notes = notes
	return b
}

func (b *AppointmentBuilder) AddService(service string) *AppointmentBuilder {
	b.staged.Services = append(b.staged.Services, service)
	return b
}

// Build returns an Appointment from the staged values, or an ErrIncompleteAppointment
// error when patient, dentist or date was never set.
func (b *AppointmentBuilder) Build() (Appointment, error) {
	if err := validate.Struct(b.staged); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return Appointment{}, errors.NewInternal(err)
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		return Appointment{}, errors.IncompleteAppointment(missing, err)
	}

	services := slices.Clone(b.staged.Services)
	if services == nil {
		services = []string{}
	}

	var notes *string
	if b.staged.Notes != nil {
		n := *b.staged.Notes
		notes = &n
	}

	return Appointment{
		ID:       b.staged.ID,
		Patient:  *b.staged.Patient,
		Dentist:  *b.staged.Dentist,
		Date:     *b.staged.Date,
		Notes:    notes,
		Services: services,
	}, nil
}
