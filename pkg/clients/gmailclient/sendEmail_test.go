package gmailclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeMessage(t *testing.T) {
	assert.Equal(t,
		"From: admin@example.com\r\nTo: alex@example.com\r\nSubject: Time off approved\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\nEnjoy",
		composeMessage("admin@example.com", "alex@example.com", "Time off approved", "Enjoy"))

	assert.Equal(t,
		"To: alex@example.com\r\nSubject: Hi\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		composeMessage("", "alex@example.com", "Hi", ""))
}
