package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/observability"
)

type apiError struct {
	Code      apperrors.Code `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError responds with the error's code and user message. Errors without
// a code are reported as internal errors without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	code := apperrors.GetCode(err)
	msg := apperrors.UserMessage(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = apperrors.ErrCodeTimeout, "render timed out"
	case code == "":
		code, msg = apperrors.ErrCodeInternal, "internal server error"
	}
	writeJSON(w, apperrors.HTTPStatus(code), apiError{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	})
}

func notFound(path string) error {
	return apperrors.New(apperrors.ErrCodeNotFound, "no route for %s", path)
}
