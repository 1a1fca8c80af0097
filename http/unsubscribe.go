package http

import (
	"html/template"
	"net/http"

	"github.com/storinews/courier/pkg/hash"
)

const invalidHashMessage = "Either email or hash is invalid."

var unsubscribedTmpl = template.Must(template.New("unsubscribed").Parse(
	`<p>{{.Email}} has been unsubscribed from {{.Name}}.</p>`,
))

// unsubscribeHandler is the target of the link embedded in every newsletter
// copy, so it stays unauthenticated. The removal result is inspected: a
// confirmation fragment is rendered only when an address was actually removed.
func (s *Server) unsubscribeHandler(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	email := query.Get("email")
	name := query.Get("name")
	if email == "" || name == "" {
		return NewError(nil, http.StatusBadRequest, "email and name are required")
	}

	if s.HMACSecret != "" {
		expected, err := hash.ComputeHmac256(email, s.HMACSecret)
		if err != nil {
			return err
		}
		if query.Get("hash") != expected {
			return NewError(nil, http.StatusBadRequest, invalidHashMessage)
		}
	}

	if err := s.NewsletterStore.RemoveEmail(r.Context(), name, email); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return unsubscribedTmpl.Execute(w, struct{ Email, Name string }{Email: email, Name: name})
}
