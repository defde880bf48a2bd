package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-clinic/internal/email"
	"github.com/jwalitptl/dental-clinic/internal/model"
	"github.com/jwalitptl/dental-clinic/pkg/event"
	"github.com/jwalitptl/dental-clinic/pkg/messaging/memory"
)

var _ Observer = (*EmailNotifier)(nil)
var _ Observer = (*SMSNotifier)(nil)
var _ Observer = (*EventNotifier)(nil)

type mockMailer struct {
	SendFunc func(ctx context.Context, msg email.Message) error
	sent     []email.Message
}

func (m *mockMailer) Send(ctx context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return nil
}

func testAppointment() model.Appointment {
	notes := "Routine check-up"
	return model.Appointment{
		ID:       1,
		Patient:  model.Patient{ID: 1, Name: "John Doe"},
		Dentist:  model.Dentist{ID: 1, Name: "Dr. Emily Brown"},
		Date:     model.Date(2024, time.December, 20),
		Notes:    &notes,
		Services: []string{"Cleaning"},
	}
}

func TestEmailNotifier(t *testing.T) {
	var out bytes.Buffer
	n := NewEmailNotifier(&out)

	require.NoError(t, n.OnNewAppointment(context.Background(), testAppointment()))
	assert.Equal(t, "Email sent for new appointment with ID: 1\n", out.String())
	assert.Equal(t, "email", Channel(n))
}

func TestEmailNotifierWithMailer(t *testing.T) {
	var out bytes.Buffer
	mailer := &mockMailer{}
	n := NewEmailNotifier(&out, WithMailer(mailer, email.Config{From: "clinic@example.com", To: "desk@example.com"}))

	require.NoError(t, n.OnNewAppointment(context.Background(), testAppointment()))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "desk@example.com", mailer.sent[0].To)
	assert.Equal(t, "New appointment #1", mailer.sent[0].Subject)
	assert.Equal(t, "Basic appointment with Dr. Emily Brown on 2024-12-20 for John Doe", mailer.sent[0].Body)
	assert.Equal(t, "Email sent for new appointment with ID: 1\n", out.String())
}

func TestEmailNotifierMailerFailure(t *testing.T) {
	var out bytes.Buffer
	mailer := &mockMailer{SendFunc: func(context.Context, email.Message) error {
		return errors.New("spool full")
	}}
	n := NewEmailNotifier(&out, WithMailer(mailer, email.Config{From: "a@example.com", To: "b@example.com"}))

	err := n.OnNewAppointment(context.Background(), testAppointment())
	assert.ErrorContains(t, err, "spool full")
	assert.Empty(t, out.String())
}

func TestSMSNotifier(t *testing.T) {
	var out bytes.Buffer
	n := NewSMSNotifier(&out)

	require.NoError(t, n.OnNewAppointment(context.Background(), testAppointment()))
	assert.Equal(t, "SMS sent for new appointment with ID: 1\n", out.String())
	assert.Equal(t, "sms", Channel(n))
}

func TestEventNotifierPublishes(t *testing.T) {
	broker := memory.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := broker.Subscribe(ctx, DefaultTopic)
	require.NoError(t, err)

	n := NewEventNotifier(broker, "")
	require.NoError(t, n.OnNewAppointment(ctx, testAppointment()))

	select {
	case raw := <-ch:
		var evt event.AppointmentEvent
		require.NoError(t, json.Unmarshal(raw, &evt))
		assert.Equal(t, event.AppointmentCreated, evt.EventType)
		assert.Equal(t, 1, evt.AppointmentID)
		assert.Equal(t, "2024-12-20", evt.Date)
		assert.Equal(t, []string{"Cleaning"}, evt.Services)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestEventNotifierPublishFailure(t *testing.T) {
	broker := memory.NewBroker()
	require.NoError(t, broker.Close())

	err := NewEventNotifier(broker, "appointments").OnNewAppointment(context.Background(), testAppointment())
	assert.ErrorContains(t, err, "APPOINTMENT_CREATED")
}

type unnamedObserver struct{}

func (unnamedObserver) OnNewAppointment(context.Context, model.Appointment) error { return nil }

func TestChannelFallsBackToType(t *testing.T) {
	assert.Equal(t, "notification.unnamedObserver", Channel(unnamedObserver{}))
}
