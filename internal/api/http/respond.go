package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/service"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	if _, ok := service.IsValidation(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrCheckoutBusy), errors.Is(err, service.ErrInvalidStep):
		return http.StatusConflict
	case errors.Is(err, service.ErrBelowMinimumOrder),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrPaymentMethodUnavailable),
		errors.Is(err, service.ErrUnsupportedServiceArea),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if fields, ok := service.IsValidation(err); ok {
		resp.Fields = fields.Messages()
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}
