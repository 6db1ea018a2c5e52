package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"networth/internal/shared/auth"
	"networth/internal/shared/errs"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// writeError maps an error to its HTTP status. Persistence and unclassified
// failures are logged in full and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := http.StatusInternalServerError
	message := "internal error"

	switch kind {
	case errs.KindValidation:
		status = http.StatusBadRequest
		message = errMessage(err)
	case errs.KindNotFound:
		status = http.StatusNotFound
		message = "resource not found"
	case errs.KindUpstream:
		status = http.StatusBadGateway
		message = errMessage(err)
	}

	fields := log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"kind":   kind,
	}
	if status >= http.StatusInternalServerError {
		log.WithFields(fields).WithError(err).Error("request failed")
	} else {
		log.WithFields(fields).WithError(err).Debug("request rejected")
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Kind: string(kind), Message: message}})
}

// errMessage returns the classified message without the wrapped cause.
func errMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

func writeValidation(w http.ResponseWriter, r *http.Request, op, msg string) {
	writeError(w, r, errs.Validation(op, msg))
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// requireUser returns the principal's user ID, answering 401 when the
// request carries none.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorBody{Kind: "unauthorized", Message: "Authentication required"}})
		return "", false
	}
	return p.UserID, true
}
