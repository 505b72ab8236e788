/*
handlers.go - HTTP API handlers for the leave management service

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to leave.Service.

ENDPOINTS:
  Public:
    GET    /api/health                      Liveness
    POST   /api/auth/register               Self-service employee signup
    POST   /api/auth/login                  Exchange credentials for a token

  Authenticated:
    GET    /api/auth/me                     Current account
    GET    /api/leaves/types                Leave types
    POST   /api/leaves                      Submit a request
    GET    /api/leaves/my-requests          Own requests
    GET    /api/leaves/balance              Own current-year balance

  Manager/Admin:
    GET    /api/leaves/team-requests        Requests captured for the actor
    PUT    /api/leaves/{id}/approve         Approve (debits balance)
    PUT    /api/leaves/{id}/reject          Reject

  Admin:
    GET    /api/leaves/all                  Every request
    GET    /api/admin/users                 Accounts
    POST   /api/admin/users                 Create staff account
    PUT    /api/admin/users/{id}/role       Change role
    PUT    /api/admin/users/{id}/manager    Assign or clear manager
    GET    /api/admin/users/{id}/balance    Any user's balance
    PUT    /api/admin/users/{id}/balance    Overwrite a balance row
    GET    /api/admin/statistics            Dashboard rollup
    GET    /api/admin/scenarios             Demo scenarios
    POST   /api/admin/scenarios/load        Load a demo scenario

REQUEST FLOW:
  1. Authenticate resolves the bearer token to a leave.Actor
  2. Decode body / path parameters
  3. Call leave.Service (authorization happens there too)
  4. Serialize the envelope
  5. Map errors with errors.Is (errors.go)

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Authentication and role gates
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/leave-service/auth"
	"github.com/warp/leave-service/leave"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *leave.Service
	Tokens  *auth.TokenIssuer
	Logger  logrus.FieldLogger

	// DB is checked by the health endpoint when set.
	DB Pinger

	// ExposeErrors adds the underlying cause to error responses.
	// Off in production.
	ExposeErrors bool
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHandler creates a handler. A nil logger uses the logrus standard logger.
func NewHandler(svc *leave.Service, tokens *auth.TokenIssuer, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		Service: svc,
		Tokens:  tokens,
		Logger:  logger,
	}
}

// Health reports that the API is up and, when a DB is configured, that the
// database answers a ping.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	out := HealthDTO{
		Success:   true,
		Message:   "Leave management API is running",
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		out.Database = "ok"
		if err := h.DB.Ping(ctx); err != nil {
			h.Logger.WithError(err).Warn("health: database ping failed")
			out.Success = false
			out.Message = "Database unavailable"
			out.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, out)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// writeList adds the count field used by every collection endpoint.
func writeList[T any](w http.ResponseWriter, items []T) {
	n := len(items)
	writeJSON(w, http.StatusOK, Response{Success: true, Count: &n, Data: items})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// decode reads a JSON body into v. An empty body leaves v untouched so the
// service reports which fields are missing.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return leave.NewError(leave.ErrValidation, "Invalid request body", err)
}
