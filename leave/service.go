/*
service.go - Leave request lifecycle

PURPOSE:
  Submit, approve and reject leave requests, and the role-scoped queries
  around them.

STATE MACHINE:
  pending ──▶ approved   (balance debited, same transaction)
     │
     └────▶ rejected   (no balance change)

  Terminal states never change again.

SUBMISSION:
  Pending requests do not hold days. The remaining balance is checked at
  submission and again inside the approval transaction, so approvals in
  any order can never push a balance below zero.

APPROVAL:
  One transaction:
  1. conditional update pending → approved, scoped to the reviewer
  2. debit the ledger by the request's working days
  Any failure rolls back both.

SEE ALSO:
  - policy.go: capabilities and review scope
  - ledger.go: balance mutations
  - accounts.go: registration, login and user administration
*/
package leave

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Service holds the dependencies of every leave operation. It keeps no
// mutable state between calls.
type Service struct {
	Store  TxStore
	Logger logrus.FieldLogger

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewService(store TxStore, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Store:  store,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) currentYear() int {
	return s.Now().UTC().Year()
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

// LeaveTypes returns every leave type ordered by name.
func (s *Service) LeaveTypes(ctx context.Context) ([]LeaveType, error) {
	return s.Store.ListLeaveTypes(ctx)
}

// =============================================================================
// SUBMIT
// =============================================================================

// SubmitInput is the raw submission as received from the client.
type SubmitInput struct {
	LeaveTypeID int64
	StartDate   string
	EndDate     string
	Reason      string
}

// Submit creates a pending request for the actor.
func (s *Service) Submit(ctx context.Context, actor Actor, in SubmitInput) (*LeaveRequest, error) {
	if err := Authorize(actor, CapSubmit); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(in.Reason)
	if in.LeaveTypeID == 0 || strings.TrimSpace(in.StartDate) == "" ||
		strings.TrimSpace(in.EndDate) == "" || reason == "" {
		return nil, validation("Please provide all required fields")
	}

	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, validation("End date must be after start date")
	}

	workingDays, err := WorkingDays(start, end)
	if err != nil {
		return nil, validation("End date must be after start date")
	}
	// A range with no working days is refused rather than stored as a 0-day request.
	if workingDays == 0 {
		return nil, validation("Selected dates contain no working days")
	}

	year := s.currentYear()
	bal, err := s.Store.GetBalance(ctx, actor.UserID, in.LeaveTypeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if bal == nil {
		return nil, notFound("No leave balance found for this leave type")
	}
	if workingDays > bal.RemainingDays {
		return nil, &InsufficientBalanceError{Remaining: bal.RemainingDays, Requested: workingDays}
	}

	user, err := s.Store.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, unauthenticated("User no longer exists")
	}

	req := &LeaveRequest{
		UserID:      actor.UserID,
		LeaveTypeID: in.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		WorkingDays: workingDays,
		Reason:      reason,
		ManagerID:   user.ManagerID,
		Status:      StatusPending,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":    req.ID,
		"user_id":       req.UserID,
		"leave_type_id": req.LeaveTypeID,
		"working_days":  req.WorkingDays,
	}).Info("leave request submitted")

	return req, nil
}

// =============================================================================
// APPROVE - The transactional operation
// =============================================================================

// Approve moves a pending request to approved and debits the requester's
// current-year balance. Both happen or neither does.
//
// A request that does not exist, is no longer pending, or belongs to
// another manager's team yields NotFound.
func (s *Service) Approve(ctx context.Context, actor Actor, requestID int64) (*LeaveRequest, error) {
	scope, err := ReviewScopeFor(actor)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	year := s.currentYear()

	var approved *LeaveRequest
	err = s.Store.WithTx(ctx, func(tx Store) error {
		ok, err := tx.MarkApproved(ctx, requestID, scope, actor.UserID, now)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("Leave request not found or already processed")
		}

		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: request %d vanished during approval", ErrInvalidState, requestID)
		}

		if err := NewLedger(tx).Debit(ctx, req.UserID, req.LeaveTypeID, year, req.WorkingDays); err != nil {
			return err
		}

		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":   approved.ID,
		"approved_by":  actor.UserID,
		"user_id":      approved.UserID,
		"working_days": approved.WorkingDays,
	}).Info("leave request approved")

	return approved, nil
}

// =============================================================================
// REJECT
// =============================================================================

// Reject moves a pending request to rejected. Balances are not touched.
func (s *Service) Reject(ctx context.Context, actor Actor, requestID int64, reason string) (*LeaveRequest, error) {
	scope, err := ReviewScopeFor(actor)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validation("Please provide a rejection reason")
	}

	ok, err := s.Store.MarkRejected(ctx, requestID, scope, actor.UserID, s.Now().UTC(), reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("Leave request not found or already processed")
	}

	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"rejected_by": actor.UserID,
	}).Info("leave request rejected")

	return req, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// MyRequests returns the actor's own requests, newest first.
func (s *Service) MyRequests(ctx context.Context, actor Actor) ([]RequestView, error) {
	if err := Authorize(actor, CapViewOwn); err != nil {
		return nil, err
	}
	id := actor.UserID
	return s.Store.ListRequests(ctx, RequestFilter{UserID: &id})
}

// TeamRequests returns requests whose captured manager is the actor.
// An empty status returns every state.
func (s *Service) TeamRequests(ctx context.Context, actor Actor, status string) ([]RequestView, error) {
	if err := Authorize(actor, CapViewTeam); err != nil {
		return nil, err
	}

	id := actor.UserID
	f := RequestFilter{ManagerID: &id}
	if strings.TrimSpace(status) != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}
	return s.Store.ListRequests(ctx, f)
}

// AllRequests returns every request in the system.
func (s *Service) AllRequests(ctx context.Context, actor Actor) ([]RequestView, error) {
	if err := Authorize(actor, CapViewAll); err != nil {
		return nil, err
	}
	return s.Store.ListRequests(ctx, RequestFilter{})
}

// MyBalance returns the actor's current-year balances.
func (s *Service) MyBalance(ctx context.Context, actor Actor) ([]Balance, error) {
	if err := Authorize(actor, CapViewOwn); err != nil {
		return nil, err
	}
	return NewLedger(s.Store).Balances(ctx, actor.UserID, s.currentYear())
}

// =============================================================================
// ADMIN BALANCE OPERATIONS
// =============================================================================

// UserBalance returns any user's current-year balances.
func (s *Service) UserBalance(ctx context.Context, actor Actor, userID int64) ([]Balance, error) {
	if err := Authorize(actor, CapManageBalances); err != nil {
		return nil, err
	}
	return NewLedger(s.Store).Balances(ctx, userID, s.currentYear())
}

// AdjustInput is an admin balance overwrite for the current year.
type AdjustInput struct {
	LeaveTypeID   int64
	TotalDays     int
	UsedDays      int
	RemainingDays int
}

// AdjustBalance overwrites, or creates, a user's current-year balance for
// one leave type. Values are trusted as given.
func (s *Service) AdjustBalance(ctx context.Context, actor Actor, userID int64, in AdjustInput) (*Balance, error) {
	if err := Authorize(actor, CapManageBalances); err != nil {
		return nil, err
	}
	if in.LeaveTypeID == 0 {
		return nil, validation("Leave type ID is required")
	}

	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	lt, err := s.Store.GetLeaveType(ctx, in.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	if lt == nil {
		return nil, validation("Invalid reference to related resource")
	}

	bal, err := NewLedger(s.Store).Adjust(ctx, Adjustment{
		UserID:        userID,
		LeaveTypeID:   in.LeaveTypeID,
		Year:          s.currentYear(),
		TotalDays:     in.TotalDays,
		UsedDays:      in.UsedDays,
		RemainingDays: in.RemainingDays,
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"leave_type_id":  in.LeaveTypeID,
		"total_days":     in.TotalDays,
		"used_days":      in.UsedDays,
		"remaining_days": in.RemainingDays,
		"adjusted_by":    actor.UserID,
	}).Info("leave balance adjusted")

	return bal, nil
}
