package courier

import (
	"context"
	"time"
)

// Newsletter is a named campaign: a recipient list, the message content, one
// attachment reference into the blob store, and send/unsubscribe counters.
type Newsletter struct {
	ID               string    `json:"-" bson:"_id,omitempty" storm:"id"`
	Name             string    `json:"name" bson:"name" storm:"index"`
	RecipientList    []string  `json:"recipientList" bson:"recipientList"`
	AttachmentPath   string    `json:"attachmentPath" bson:"attachmentPath"`
	Subject          string    `json:"subject" bson:"subject"`
	Text             string    `json:"text" bson:"text"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	SentEmailsCount  int       `json:"sentEmailsCount" bson:"sentEmailsCount"`
	UnsubscribeCount int       `json:"unsubscribeCount" bson:"unsubscribeCount"`
}

// NewNewsletter returns a newsletter ready to be persisted. The store assigns
// the identifier and the creation timestamp.
func NewNewsletter(name string, recipients []string, attachmentPath, subject, text string) *Newsletter {
	return &Newsletter{
		Name:           name,
		RecipientList:  recipients,
		AttachmentPath: attachmentPath,
		Subject:        subject,
		Text:           text,
	}
}

// Validate checks the fields required to register a newsletter.
func (n *Newsletter) Validate() error {
	switch {
	case n.Name == "":
		return &Error{Code: ErrInvalid, Message: "name is required"}
	case len(n.RecipientList) == 0:
		return &Error{Code: ErrInvalid, Message: "recipient list is required and must not be empty"}
	case n.AttachmentPath == "":
		return &Error{Code: ErrInvalid, Message: "attachment path is required"}
	}
	return nil
}

// Summary is the per-newsletter row returned by the list endpoint.
type Summary struct {
	Name             string `json:"name"`
	Recipients       int    `json:"recipients"`
	EmailsSent       int    `json:"emailsSent"`
	FileName         string `json:"fileName"`
	UnsubscribeCount int    `json:"unsubscribeCount"`
}

// Summary derives the list row for this newsletter.
func (n *Newsletter) Summary() Summary {
	return Summary{
		Name:             n.Name,
		Recipients:       len(n.RecipientList),
		EmailsSent:       n.SentEmailsCount,
		FileName:         n.AttachmentPath,
		UnsubscribeCount: n.UnsubscribeCount,
	}
}

// NewsletterStore is the interface that wraps access to persisted newsletters.
//
// Names are not enforced unique by any implementation; every operation that
// addresses a newsletter by name acts on the first match the store returns.
// Mutations must be atomic per document so that concurrent add/remove/increment
// calls cannot lose updates.
type NewsletterStore interface {
	Create(ctx context.Context, n *Newsletter) error
	FindByName(ctx context.Context, name string) (*Newsletter, error)
	Summaries(ctx context.Context) ([]Summary, error)
	AddEmail(ctx context.Context, name, email string) error
	RemoveEmail(ctx context.Context, name, email string) error
	IncrementSentCount(ctx context.Context, name string, by int) error
}

// RegisterRequest is the body of POST /register-newsletter.
type RegisterRequest struct {
	Name           string   `json:"name"`
	RecipientList  []string `json:"recipientList"`
	AttachmentPath string   `json:"attachmentPath"`
	Subject        string   `json:"subject"`
	Text           string   `json:"text"`
}

// SendRequest is the body of POST /send-newsletter.
type SendRequest struct {
	Name string `json:"name"`
}

// AddEmailRequest is the body of POST /add-email.
type AddEmailRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddEmailResponse acknowledges a recipient addition.
type AddEmailResponse struct {
	Success string `json:"success"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
