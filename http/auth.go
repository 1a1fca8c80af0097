package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// requireToken gates a handler behind the static bearer token: missing
// credentials yield 401, a mismatched token 403. The gated handler is never
// entered on failure, so no side effect can occur.
func (s *Server) requireToken(next appHandler) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			return NewError(nil, http.StatusUnauthorized, "missing bearer token")
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.AuthToken)) != 1 {
			return NewError(nil, http.StatusForbidden, "invalid bearer token")
		}

		return next(w, r)
	}
}
