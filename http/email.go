package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/storinews/courier"
)

func (s *Server) addEmailHandler(w http.ResponseWriter, r *http.Request) error {
	var req courier.AddEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return NewError(err, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return NewError(nil, http.StatusBadRequest, "name and email are required")
	}

	hlog.FromRequest(r).Info().
		Str("name", req.Name).
		Str("email", req.Email).
		Msg("Adding recipient")

	if err := s.NewsletterStore.AddEmail(r.Context(), req.Name, req.Email); err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, &courier.AddEmailResponse{
		Success: fmt.Sprintf("%s has been added to %s.", req.Email, req.Name),
	})
	return nil
}
