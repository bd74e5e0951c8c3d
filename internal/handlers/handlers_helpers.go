package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"minichat-backend/internal/errs"
	"minichat-backend/pkg/httputil"
)

const maxBodyBytes = 1 << 20

// chatIDFromURL parses the {chatID} path segment. A segment that is not a
// positive integer cannot name a chat, so it is reported as not found.
func chatIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "chatID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NotFound("chat", raw)
	}
	return id, nil
}

// decodeJSON reads a body holding exactly one JSON value into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errs.Validation("body", "Invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errs.Validation("body", "Invalid request body")
	}
	return nil
}

// respondWithServiceError maps a service error to its HTTP representation.
func respondWithServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := errs.ToHTTP(err)
	var fe *errs.FieldError
	if status != http.StatusInternalServerError && errors.As(err, &fe) {
		httputil.RespondFieldError(w, log, status, fe.Field, fe.Message)
		return
	}
	log.WithError(err).Error("request failed")
	httputil.RespondError(w, log, http.StatusInternalServerError, "Internal server error")
}
