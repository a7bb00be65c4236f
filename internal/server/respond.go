package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/profiles"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/programs"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/sessionstore"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/storage"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrBadRequest marks undecodable request bodies and parameters.
var ErrBadRequest = errors.New("bad request")

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, gate.ErrInvalidRole),
		errors.Is(err, iam.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, profiles.ErrInvalidInput),
		errors.Is(err, programs.ErrInvalidInput),
		errors.Is(err, programs.ErrInvalidSchema),
		errors.Is(err, programs.ErrInvalidStatus),
		errors.Is(err, storage.ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.Is(err, programs.ErrInvalidAnswers):
		return http.StatusUnprocessableEntity
	case errors.Is(err, iam.ErrInvalidCredentials),
		errors.Is(err, iam.ErrSSOEmailMissing),
		errors.Is(err, gate.ErrUnauthenticated),
		errors.Is(err, gate.ErrProfileMissing),
		errors.Is(err, sessionstore.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, gate.ErrForbidden),
		errors.Is(err, programs.ErrNotOwner),
		errors.Is(err, iam.ErrAccountDisabled):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gate.ErrInvalidOperation),
		errors.Is(err, iam.ErrEmailTaken),
		errors.Is(err, programs.ErrAlreadyApplied),
		errors.Is(err, programs.ErrAlreadyAssigned),
		errors.Is(err, programs.ErrNotAccepting),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, sessionstore.ErrRevocationUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, storage.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the status for err. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	case http.StatusUnauthorized:
		// store failures surface as plain 401s
		msg = http.StatusText(status)
		if errors.Is(err, iam.ErrInvalidCredentials) {
			msg = iam.ErrInvalidCredentials.Error()
		}
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
