package response

import (
	"encoding/json"
	"net/http"

	"github.com/aaravmahajanofficial/product-catalog/internal/errors"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
}

// interface {} == any
func WriteJson(w http.ResponseWriter, statusCode int, data any) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data) //struct to json
}

// Error writes err with the status it declares (500 when it declares none).
// Errors that are not AppErrors are reported with the generic message only.
func Error(w http.ResponseWriter, err error) {

	message := errors.UnknownErrorMessage

	if appErr, ok := errors.IsAppError(err); ok && appErr.Message != "" {
		message = appErr.Message
	}

	WriteJson(w, errors.StatusCode(err), ErrorResponse{Message: message})
}
