package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSender_Build(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.example.com", Port: 465, Username: "me@example.com"})

	m, err := s.build(Message{
		To:        "you@example.com",
		Subject:   "Hello",
		Body:      "plain body",
		MessageID: "abc123@autodash",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "me@example.com")
	assert.Contains(t, raw, "you@example.com")
	assert.Contains(t, raw, "abc123@autodash")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "plain body")
}

func TestSMTPSender_BuildInvalidRecipient(t *testing.T) {
	s := NewSMTPSender(Config{Username: "me@example.com"})
	_, err := s.build(Message{To: "not an address"})
	assert.Error(t, err)
}
