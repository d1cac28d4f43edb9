package handlers

import (
	"encoding/json"
	"net/http"

	"iot-connector/internal/common/errors"
	"iot-connector/internal/common/logging"
	"iot-connector/internal/models"
)

// writeJSON encodes v as the response body with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps the typed error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeValidation, errors.ErrTypeBadRequest:
		return http.StatusBadRequest
	case errors.ErrTypeAuth:
		return http.StatusUnauthorized
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeProtocol:
		return http.StatusBadGateway
	case errors.ErrTypeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates a typed error into the structured error body. The
// message comes from the error itself; causes stay server-side.
func writeError(w http.ResponseWriter, logger logging.Logger, err error, details ...models.ErrorDetail) {
	status := statusFor(err)

	message := "internal error"
	if appErr, ok := errors.GetAppError(err); ok {
		message = appErr.Message
	}

	if status >= 500 {
		logger.Error("Request failed", err)
	} else {
		logger.Warn("Request rejected",
			logging.Field{Key: "status", Value: status},
			logging.Field{Key: "reason", Value: message},
		)
	}

	writeJSON(w, status, models.ErrorBody{
		Error: models.ErrorInfo{
			Code:    status,
			Message: message,
			Details: details,
		},
	})
}

// writeValidationError is the shorthand for caller-input failures with a
// known offending field.
func writeValidationError(w http.ResponseWriter, logger logging.Logger, field, msg string) {
	writeError(w, logger, errors.ValidationError(msg), models.ErrorDetail{Field: field, Error: msg})
}
