// Package email defines the interface for transactional email delivery and
// provides two implementations: the Resend API and plain SMTP. The provider
// is chosen once at startup from configuration.
package email

import "context"

// Message is one outbound receipt email. The attachment is optional; when
// AttachmentName is empty no attachment is added.
type Message struct {
	To      string
	Bcc     string // optional
	From    string
	Subject string
	Body    string // plain text, already rendered

	Attachment     []byte
	AttachmentName string // filename shown to the recipient, extension included
}

// Sender is the interface the pipeline uses to send receipt emails.
// Tests inject a stub that records calls without hitting the network.
// Implementations report transport failures; they never retry.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
