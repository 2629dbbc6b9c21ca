package core

import "net/mail"

type (
	// EmailMessage is a simple text/plain message. The web client only ever
	// sends plain notification mail (landing-page contact requests); there is
	// no templating or attachment support.
	EmailMessage struct {
		To      []mail.Address
		ReplyTo *mail.Address
		Subject string
		Body    string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }
