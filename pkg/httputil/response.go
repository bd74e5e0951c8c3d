package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	api_models "minichat-backend/internal/models"
)

// RespondJSON writes a JSON response with the given status code and payload.
// A nil payload writes the status only. The payload is encoded before the
// header goes out, so an encoding failure still yields a clean 500.
func RespondJSON(w http.ResponseWriter, log logrus.FieldLogger, statusCode int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(statusCode)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("status", statusCode).Error("error encoding JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.WithError(err).Debug("error writing JSON response")
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, log logrus.FieldLogger, statusCode int, message string) {
	RespondJSON(w, log, statusCode, api_models.ErrorResponse{Error: message})
}

// RespondFieldError is RespondError naming the rejected field or parameter.
func RespondFieldError(w http.ResponseWriter, log logrus.FieldLogger, statusCode int, field, message string) {
	RespondJSON(w, log, statusCode, api_models.ErrorResponse{Error: message, Field: field})
}
