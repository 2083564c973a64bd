package apihandlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/userhub/userhub/pkg/models"
)

// APIError is the stable error response shape. 5xx responses carry a generic
// message; internal detail goes to the log only.
type APIError struct {
	Message string              `json:"error"`
	Code    string              `json:"code"`
	Fields  []models.FieldError `json:"fields,omitempty"`
}

// renderError classifies err into the API error taxonomy exactly once,
// writes the response, and returns the classification for request logging.
// Store-level vocabulary never reaches the response body.
func renderError(w http.ResponseWriter, err error) (status int, code string) {
	apiErr := APIError{Message: err.Error()}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		status, apiErr.Code = http.StatusBadRequest, "validation_error"
		apiErr.Message = "validation failed"
		apiErr.Fields = verr.Fields
	case errors.Is(err, models.ErrInvalidCursor):
		status, apiErr.Code = http.StatusBadRequest, "invalid_cursor"
		apiErr.Message = "invalid pagination token"
	case errors.Is(err, models.ErrBadRequest):
		status, apiErr.Code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, models.ErrNotFound):
		status, apiErr.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrConflict):
		status, apiErr.Code = http.StatusConflict, "conflict"
	case errors.Is(err, models.ErrStoreUnavailable):
		status, apiErr.Code = http.StatusServiceUnavailable, "store_unavailable"
		apiErr.Message = "store temporarily unavailable"
	default:
		// corrupt records and anything unclassified stay internal
		status, apiErr.Code = http.StatusInternalServerError, "internal_error"
		apiErr.Message = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(apiErr); encodeErr != nil {
		log.Errorf("error encoding error response: %v", encodeErr)
	}

	return status, apiErr.Code
}
