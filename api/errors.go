package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/warp/leave-service/leave"
)

// statusFor maps a leave error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, leave.ErrValidation), errors.Is(err, leave.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, leave.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, leave.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, leave.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, leave.ErrConflict):
		// Duplicates and insufficient balance are client errors.
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// messageFor returns the client-safe message for err.
func messageFor(err error, status int) string {
	var insufficient *leave.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		return insufficient.Error()
	}
	var le *leave.Error
	if errors.As(err, &le) && status < http.StatusInternalServerError {
		return le.Message
	}
	if status == http.StatusInternalServerError {
		return "Server Error"
	}
	return http.StatusText(status)
}

// fail writes the error envelope. Server errors are logged; their detail
// only reaches the client when ExposeErrors is set.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Success: false, Message: messageFor(err, status)}

	if status >= http.StatusInternalServerError {
		h.Logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}

	if h.ExposeErrors {
		var le *leave.Error
		switch {
		case errors.As(err, &le) && le.Detail() != "":
			resp.Error = le.Detail()
		case status >= http.StatusInternalServerError:
			resp.Error = err.Error()
		}
	}
	writeJSON(w, status, resp)
}
