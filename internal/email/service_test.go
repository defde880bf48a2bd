package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpoolRendersMessage(t *testing.T) {
	var buf bytes.Buffer
	spool := NewSpool(&buf)

	err := spool.Send(context.Background(), Message{
		From:    "clinic@example.com",
		To:      "frontdesk@example.com",
		Subject: "New appointment #1",
		Body:    "Basic appointment with Dr. Emily Brown on 2024-12-20",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "From: clinic@example.com")
	assert.Contains(t, out, "To: frontdesk@example.com")
	assert.Contains(t, out, "Subject: New appointment #1")
	assert.Contains(t, out, "Basic appointment with Dr. Emily Brown on 2024-12-20")
}

func TestSpoolRequiresAddresses(t *testing.T) {
	var buf bytes.Buffer
	err := NewSpool(&buf).Send(context.Background(), Message{To: "frontdesk@example.com"})
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestSpoolHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewSpool(&buf).Send(ctx, Message{From: "a@example.com", To: "b@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MAIL_TO", "desk@smile.example")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "desk@smile.example", cfg.To)
	assert.Equal(t, "clinic@example.com", cfg.From)
}
