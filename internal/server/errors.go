package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/job-intel/internal/pipeline"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an analysis error.
// Validation problems are the caller's fault, an unusable posting URL is
// unprocessable and anything else is ours.
func HTTPStatus(err error) int {
	switch pipeline.Kind(err) {
	case pipeline.KindValidation:
		return http.StatusBadRequest
	case pipeline.KindFetch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorResponseFor builds the client-facing body for err. Internal errors
// never expose their cause.
func errorResponseFor(err error, requestID string) errorBody {
	var validationErr *pipeline.ValidationError
	var fetchErr *pipeline.FetchError
	switch {
	case errors.As(err, &validationErr):
		return errorBody{Error: "validation error", Field: validationErr.Field, Message: validationErr.Message, RequestID: requestID}
	case errors.As(err, &fetchErr):
		msg := "could not fetch posting"
		if fetchErr.Cause != nil {
			msg = fetchErr.Cause.Error()
		}
		return errorBody{Error: "fetch error", Message: msg, RequestID: requestID}
	default:
		return errorBody{Error: "internal error", RequestID: requestID}
	}
}
