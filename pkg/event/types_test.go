package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-clinic/internal/model"
)

func TestNewAppointmentCreated(t *testing.T) {
	now := time.Date(2024, time.December, 1, 9, 0, 0, 0, time.UTC)
	apt := model.Appointment{
		ID:      1,
		Patient: model.Patient{ID: 1, Name: "John Doe"},
		Dentist: model.Dentist{ID: 2, Name: "Dr. Michael Green"},
		Date:    model.Date(2024, time.December, 20),
	}

	evt := NewAppointmentCreated(apt, now)

	assert.NotEqual(t, uuid.Nil, evt.ID)
	assert.Equal(t, AppointmentCreated, evt.EventType)
	assert.Equal(t, 1, evt.AppointmentID)
	assert.Equal(t, 2, evt.DentistID)
	assert.Equal(t, "2024-12-20", evt.Date)
	assert.Equal(t, now, evt.CreatedAt)

	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"services":[]`)
	assert.NotContains(t, string(raw), `"notes"`)
}

func TestEventIDsAreUnique(t *testing.T) {
	apt := model.Appointment{ID: 1}
	a := NewAppointmentCreated(apt, time.Now())
	b := NewAppointmentCreated(apt, time.Now())
	assert.NotEqual(t, a.ID, b.ID)
}
