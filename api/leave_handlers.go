package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/leave-service/leave"
)

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// LeaveTypes lists leave types.
// GET /api/leaves/types
func (h *Handler) LeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.LeaveTypes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toLeaveTypeDTOs(types))
}

// SubmitLeave creates a pending request for the caller.
// POST /api/leaves
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.Service.Submit(r.Context(), actor(r), leave.SubmitInput{
		LeaveTypeID: int64(req.LeaveTypeID),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toLeaveRequestDTO(*created))
}

// MyRequests lists the caller's requests, newest first.
// GET /api/leaves/my-requests
func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.MyRequests(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, toLeaveRequestDTOs(views))
}

// MyBalance returns the caller's current-year balances.
// GET /api/leaves/balance
func (h *Handler) MyBalance(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.MyBalance(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toBalanceDTOs(balances))
}

// TeamRequests lists requests captured for the caller as manager.
// GET /api/leaves/team-requests?status=pending
func (h *Handler) TeamRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.TeamRequests(r.Context(), actor(r), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, toLeaveRequestDTOs(views))
}

// AllRequests lists every request.
// GET /api/leaves/all
func (h *Handler) AllRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.AllRequests(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, toLeaveRequestDTOs(views))
}

// ApproveLeave approves a pending request and debits the balance.
// PUT /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	approved, err := h.Service.Approve(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Leave request approved successfully", toLeaveRequestDTO(*approved))
}

// RejectLeave rejects a pending request.
// PUT /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req RejectLeaveRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	rejected, err := h.Service.Reject(r.Context(), actor(r), id, req.RejectionReason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Leave request rejected successfully", toLeaveRequestDTO(*rejected))
}
