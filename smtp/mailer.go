package smtp

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/storinews/courier"
)

type mailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewMailer returns a Mailer delivering through the configured SMTP relay.
func NewMailer(config *courier.Config) courier.Mailer {
	return &mailer{
		from: config.Newsletter.From,
		dialer: gomail.NewDialer(
			config.SMTP.Host,
			config.SMTP.Port,
			config.SMTP.Username,
			config.SMTP.Password,
		),
	}
}

// Send submits one message to one recipient. gomail carries no context, so
// cancellation is honored only before dialing.
func (m *mailer) Send(ctx context.Context, msg *courier.Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	if msg.AttachmentPath != "" {
		gm.Attach(msg.AttachmentPath, gomail.Rename(filepath.Base(msg.AttachmentPath)))
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return errors.Errorf("failed to send mail to %s: %v", msg.To, err)
	}

	return nil
}
