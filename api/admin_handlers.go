package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/leave-service/leave"
)

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ListUsers lists every account, newest first.
// GET /api/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, toUserDTOs(users))
}

// CreateStaff creates an account with any role.
// POST /api/admin/users
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	in := leave.NewAccount{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Role:       req.Role,
	}
	if req.ManagerID != nil && *req.ManagerID != 0 {
		id := int64(*req.ManagerID)
		in.ManagerID = &id
	}

	u, err := h.Service.CreateStaff(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Staff account created successfully", toUserDTO(*u))
}

// UpdateRole changes a user's role.
// PUT /api/admin/users/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req UpdateRoleRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.Service.UpdateRole(r.Context(), actor(r), id, req.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserDTO(*u))
}

// AssignManager sets or clears a user's manager.
// PUT /api/admin/users/{id}/manager
func (h *Handler) AssignManager(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req AssignManagerRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	var managerID *int64
	if req.ManagerID != nil && *req.ManagerID != 0 {
		m := int64(*req.ManagerID)
		managerID = &m
	}

	u, err := h.Service.AssignManager(r.Context(), actor(r), id, managerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserDTO(*u))
}

// UserBalance returns any user's current-year balances.
// GET /api/admin/users/{id}/balance
func (h *Handler) UserBalance(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	balances, err := h.Service.UserBalance(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toBalanceDTOs(balances))
}

// AdjustBalance overwrites a current-year balance row.
// PUT /api/admin/users/{id}/balance
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req AdjustBalanceRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	bal, err := h.Service.AdjustBalance(r.Context(), actor(r), id, leave.AdjustInput{
		LeaveTypeID:   int64(req.LeaveTypeID),
		TotalDays:     req.TotalDays,
		UsedDays:      req.UsedDays,
		RemainingDays: req.RemainingDays,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toBalanceDTO(*bal))
}

// Statistics returns the admin dashboard rollup.
// GET /api/admin/statistics
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Statistics(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toStatisticsDTO(stats))
}
