// Package transport contains the HTTP router, middleware chain, and all
// request handlers for the public site API and the admin editor API.
package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/getcoveredlife/studio/model"
)

// statusForCode maps ErrorEnvelope codes to HTTP status codes.
var statusForCode = map[string]int{
	model.ErrBadRequest:       http.StatusBadRequest,
	model.ErrUnauthorized:     http.StatusUnauthorized,
	model.ErrForbidden:        http.StatusForbidden,
	model.ErrNotFound:         http.StatusNotFound,
	model.ErrConflict:         http.StatusConflict,
	model.ErrValidationError:  http.StatusBadRequest,
	model.ErrInternalError:    http.StatusInternalServerError,
	model.ErrStorageFailure:   http.StatusInternalServerError,
	model.ErrPaymentFailure:   http.StatusBadGateway,
	model.ErrInvalidSignature: http.StatusBadRequest,
	model.ErrNoPageLoaded:     http.StatusConflict,
	model.ErrSessionNotFound:  http.StatusNotFound,
}

// maxBodyBytes bounds request bodies for all JSON endpoints.
const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// WriteError writes an ErrorEnvelope as a JSON response with the correct
// HTTP status code. If err is not an *ErrorEnvelope, a generic 500 is returned.
func WriteError(w http.ResponseWriter, err error) {
	ee, ok := err.(*model.ErrorEnvelope)
	if !ok {
		ee = model.NewInternalError()
	}

	status := statusForCode[ee.Code]
	if status == 0 {
		status = http.StatusInternalServerError
	}

	type errorResponse struct {
		Error *model.ErrorEnvelope `json:"error"`
	}
	WriteJSON(w, status, errorResponse{Error: ee})
}

// WriteValidationError writes a 400 error response with field-level details.
func WriteValidationError(w http.ResponseWriter, details []model.FieldError) {
	WriteError(w, model.NewValidationError(details))
}

// readJSON decodes a bounded JSON request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return model.NewBadRequestError("request body is required")
		}
		return model.NewBadRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}
