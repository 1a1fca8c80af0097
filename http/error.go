package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/storinews/courier"
)

type appHandler func(w http.ResponseWriter, r *http.Request) error

// Error adapts an appHandler into an http.HandlerFunc, translating a returned
// error into a response. ClientError values carry their own status and body;
// anything else is mapped through the root error taxonomy, so a driver's
// not_found or conflict surfaces as 404 or 409 and everything unexpected as a
// generic 500.
func (s *Server) Error(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		hlog.FromRequest(r).Error().Msg(err.Error())

		if clientError, ok := err.(ClientError); ok {
			body, bodyErr := clientError.Body()
			if bodyErr != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			status, headers := clientError.Headers()
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			w.WriteHeader(status)
			_, _ = w.Write(body)
			return
		}

		status := statusFromCode(courier.ErrorCode(err))
		if status == http.StatusInternalServerError {
			sentry.CaptureException(err)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": courier.ErrorMessage(err),
		})
	}
}

func statusFromCode(code string) int {
	switch code {
	case courier.ErrInvalid:
		return http.StatusBadRequest
	case courier.ErrUnauthorized:
		return http.StatusUnauthorized
	case courier.ErrForbidden:
		return http.StatusForbidden
	case courier.ErrNotFound:
		return http.StatusNotFound
	case courier.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientError is the interface that wraps errors meant for the client.
type ClientError interface {
	Error() string
	Body() ([]byte, error)
	Headers() (int, map[string]string)
}

// Error represents a detailed error message
type Error struct {
	Cause   error  `json:"-"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Body returns the response body for the error
func (e *Error) Body() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("Error while parsing response body: %v", err)
	}
	return body, nil
}

// Headers returns the status and headers
func (e *Error) Headers() (int, map[string]string) {
	return e.Status, map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
}

// NewError returns a new error message
func NewError(err error, status int, message string) error {
	return &Error{
		Cause:   err,
		Message: message,
		Status:  status,
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
