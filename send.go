package courier

import "context"

// Message is a single outbound email.
type Message struct {
	To             string
	Subject        string
	Text           string
	HTML           string
	AttachmentPath string // local path to the staged attachment; empty means none
}

// Mailer is the interface that wraps delivery of one message to one recipient.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// Per-recipient delivery outcomes.
const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

// RecipientResult records what happened to one recipient's copy.
type RecipientResult struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SendReport is the outcome of one send-newsletter call. Delivery stops at the
// first relay failure; recipients after it are reported as skipped, and
// SentEmailsCount is incremented by Delivered only.
type SendReport struct {
	Name      string            `json:"name"`
	Delivered int               `json:"delivered"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Results   []RecipientResult `json:"results"`
}
