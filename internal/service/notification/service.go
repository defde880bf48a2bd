package notification

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jwalitptl/dental-clinic/internal/email"
	"github.com/jwalitptl/dental-clinic/internal/model"
	"github.com/jwalitptl/dental-clinic/internal/service/description"
	"github.com/jwalitptl/dental-clinic/pkg/event"
	"github.com/jwalitptl/dental-clinic/pkg/messaging"
)

const (
	channelEmail = "email"
	channelSMS   = "sms"
	channelEvent = "event"

	// DefaultTopic is the broker channel for appointment events.
	DefaultTopic = "appointments"
)

// Observer is notified synchronously whenever the clinic registers a new appointment.
type Observer interface {
	OnNewAppointment(ctx context.Context, apt model.Appointment) error
}

// Channel names an observer for logs and metrics.
func Channel(o Observer) string {
	if n, ok := o.(interface{ Channel() string }); ok {
		return n.Channel()
	}
	return fmt.Sprintf("%T", o)
}

type EmailNotifier struct {
	out    io.Writer
	mailer email.Service
	from   string
	to     string
}

type EmailOption func(*EmailNotifier)

// WithMailer also hands a composed notice to mailer for every appointment.
func WithMailer(mailer email.Service, cfg email.Config) EmailOption {
	return func(n *EmailNotifier) {
		n.mailer = mailer
		n.from = cfg.From
		n.to = cfg.To
	}
}

func NewEmailNotifier(out io.Writer, opts ...EmailOption) *EmailNotifier {
	n := &EmailNotifier{out: out}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *EmailNotifier) Channel() string { return channelEmail }

func (n *EmailNotifier) OnNewAppointment(ctx context.Context, apt model.Appointment) error {
	if n.mailer != nil {
		msg := email.Message{
			From:    n.from,
			To:      n.to,
			Subject: fmt.Sprintf("New appointment #%d", apt.ID),
			Body: fmt.Sprintf("%s on %s for %s",
				description.NewBasic(apt).Description(), model.FormatDate(apt.Date), apt.Patient.Name),
		}
		if err := n.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}
	_, err := fmt.Fprintf(n.out, "Email sent for new appointment with ID: %d\n", apt.ID)
	return err
}

type SMSNotifier struct {
	out io.Writer
}

func NewSMSNotifier(out io.Writer) *SMSNotifier {
	return &SMSNotifier{out: out}
}

func (n *SMSNotifier) Channel() string { return channelSMS }

func (n *SMSNotifier) OnNewAppointment(_ context.Context, apt model.Appointment) error {
	_, err := fmt.Fprintf(n.out, "SMS sent for new appointment with ID: %d\n", apt.ID)
	return err
}

// EventNotifier publishes an APPOINTMENT_CREATED event to a broker topic.
type EventNotifier struct {
	broker messaging.Broker
	topic  string
	now    func() time.Time
}

func NewEventNotifier(broker messaging.Broker, topic string) *EventNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &EventNotifier{broker: broker, topic: topic, now: time.Now}
}

func (n *EventNotifier) Channel() string { return channelEvent }

func (n *EventNotifier) OnNewAppointment(ctx context.Context, apt model.Appointment) error {
	evt := event.NewAppointmentCreated(apt, n.now())
	if err := n.broker.Publish(ctx, n.topic, evt); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.EventType, err)
	}
	return nil
}
