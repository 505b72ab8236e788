package api

import (
	"net/http"

	"github.com/warp/leave-service/leave"
)

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register creates an employee account and returns it with a token.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.Service.Register(r.Context(), leave.NewAccount{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, u)
}

// Login exchanges credentials for a token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, u)
}

// Me returns the authenticated account.
// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.Me(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserDTO(*u))
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *leave.User) {
	token, err := h.Tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, status, AuthDTO{User: toUserDTO(*u), Token: token})
}
