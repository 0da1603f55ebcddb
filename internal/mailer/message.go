package mailer

import "strings"

// Message describes one outbound email. To is a single recipient string;
// multiple addresses are comma-separated ("a@x.com, b@y.com").
type Message struct {
	From        string
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Attachment carries base64-encoded file content. Decoding happens in the
// transport, not at the HTTP boundary.
type Attachment struct {
	Filename string
	Content  string
}

// SendResult is the transport's acknowledgment of an accepted message.
type SendResult struct {
	MessageID string
}

// Sender delivers a message and reports the outcome as a value rather than
// leaving callers to untangle transport internals.
type Sender interface {
	Send(msg Message) (SendResult, error)
}

// splitRecipients breaks a comma-separated recipient string into individual
// addresses for the SMTP envelope.
func splitRecipients(to string) []string {
	parts := strings.Split(to, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if addr := strings.TrimSpace(p); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
