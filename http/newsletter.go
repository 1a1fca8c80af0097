package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/storinews/courier"
	"github.com/storinews/courier/pkg/hash"
	"github.com/storinews/courier/smtp"
)

const registeredMessage = "Newsletter registered successfully!"

func (s *Server) registerNewsletterHandler(w http.ResponseWriter, r *http.Request) error {
	var req courier.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return NewError(err, http.StatusBadRequest, "invalid request body")
	}

	n := courier.NewNewsletter(req.Name, req.RecipientList, req.AttachmentPath, req.Subject, req.Text)
	if err := n.Validate(); err != nil {
		return err
	}

	hlog.FromRequest(r).Info().
		Str("name", n.Name).
		Int("recipients", len(n.RecipientList)).
		Msg("Registering newsletter")

	if err := s.NewsletterStore.Create(r.Context(), n); err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, &courier.MessageResponse{Message: registeredMessage})
	return nil
}

func (s *Server) listNewslettersHandler(w http.ResponseWriter, r *http.Request) error {
	summaries, err := s.NewsletterStore.Summaries(r.Context())
	if err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, summaries)
	return nil
}

func (s *Server) sendNewsletterHandler(w http.ResponseWriter, r *http.Request) error {
	var req courier.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return NewError(err, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return NewError(nil, http.StatusBadRequest, "name is required")
	}

	n, err := s.NewsletterStore.FindByName(r.Context(), req.Name)
	if err != nil {
		return err
	}
	if len(n.RecipientList) == 0 {
		return NewError(nil, http.StatusBadRequest, "newsletter has no recipients")
	}
	if n.AttachmentPath == "" {
		return NewError(nil, http.StatusBadRequest, "newsletter has no attachment path")
	}

	logger := hlog.FromRequest(r)
	logger.Info().
		Str("name", n.Name).
		Str("attachment", n.AttachmentPath).
		Int("recipients", len(n.RecipientList)).
		Msg("Staging attachment")

	attachment, cleanup, err := s.Stager.Stage(r.Context(), n.AttachmentPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error().Err(err).Msg("Failed to purge scratch directory")
			sentry.CaptureException(err)
		}
	}()

	report := s.deliver(r, n, attachment)

	if report.Delivered > 0 {
		if err := s.NewsletterStore.IncrementSentCount(r.Context(), n.Name, report.Delivered); err != nil {
			return err
		}
	}

	if report.Failed > 0 {
		writeJSONResponse(w, http.StatusInternalServerError, report)
		return nil
	}

	writeJSONResponse(w, http.StatusOK, report)
	return nil
}

// deliver sends the newsletter to each recipient in turn, strictly one at a
// time, stopping at the first relay failure. The sent counter reflects
// delivered copies only, so a mid-list failure never inflates it.
func (s *Server) deliver(r *http.Request, n *courier.Newsletter, attachment string) *courier.SendReport {
	logger := hlog.FromRequest(r)
	report := &courier.SendReport{Name: n.Name}

	aborted := false
	for _, email := range n.RecipientList {
		if aborted {
			report.Skipped++
			report.Results = append(report.Results, courier.RecipientResult{
				Email:  email,
				Status: courier.DeliverySkipped,
			})
			continue
		}

		html, err := smtp.ComposeHTML(s.ProductName, s.BaseURL, n.Text, s.unsubscribeURL(n.Name, email))
		if err == nil {
			err = s.Mailer.Send(r.Context(), &courier.Message{
				To:             email,
				Subject:        n.Subject,
				Text:           n.Text,
				HTML:           html,
				AttachmentPath: attachment,
			})
		}
		if err != nil {
			logger.Error().Err(err).Str("email", email).Msg("Failed to send newsletter")
			aborted = true
			report.Failed++
			report.Results = append(report.Results, courier.RecipientResult{
				Email:  email,
				Status: courier.DeliveryFailed,
				Error:  err.Error(),
			})
			continue
		}

		report.Delivered++
		report.Results = append(report.Results, courier.RecipientResult{
			Email:  email,
			Status: courier.DeliverySent,
		})
	}

	return report
}

// unsubscribeURL builds the link embedded in one recipient's copy. The hash
// parameter is present only when an HMAC secret is configured. When no public
// base URL is configured the link falls back to the listener's own address;
// the listener is always bound before the server accepts requests.
func (s *Server) unsubscribeURL(name, email string) string {
	v := url.Values{}
	v.Set("name", name)
	v.Set("email", email)
	if s.HMACSecret != "" {
		if h, err := hash.ComputeHmac256(email, s.HMACSecret); err == nil {
			v.Set("hash", h)
		}
	}

	base := s.BaseURL
	if base == "" {
		base = s.URL()
	}
	return fmt.Sprintf("%s/unsubscribe?%s", base, v.Encode())
}
