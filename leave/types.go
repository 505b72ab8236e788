// Package leave implements the leave-request lifecycle and the balance
// ledger behind it: submission, approval, rejection, role-scoped queries
// and admin rollups.
package leave

import (
	"strings"
	"time"
)

// =============================================================================
// ROLE - Closed set of account roles
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts user input into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", validation("Invalid role. Must be employee, manager, or admin")
	}
	return r, nil
}

// =============================================================================
// STATUS - Request lifecycle states
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", validation("Invalid status. Must be pending, approved, or rejected")
	}
	return st, nil
}

// =============================================================================
// ENTITIES
// =============================================================================

// User is an account. ManagerID is the live manager used for future
// submissions; requests keep their own snapshot.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   *string
	ManagerID    *int64
	CreatedAt    time.Time
}

// LeaveType is static reference data seeded with the schema.
type LeaveType struct {
	ID          int64
	Name        string
	DaysPerYear int
}

// Balance is the per-user, per-type, per-year entitlement.
// Invariant: RemainingDays == TotalDays - UsedDays.
type Balance struct {
	ID            int64
	UserID        int64
	LeaveTypeID   int64
	LeaveTypeName string
	Year          int
	TotalDays     int
	UsedDays      int
	RemainingDays int
}

// LeaveRequest is owned by the submitting user and never deleted.
type LeaveRequest struct {
	ID              int64
	UserID          int64
	LeaveTypeID     int64
	StartDate       time.Time
	EndDate         time.Time
	WorkingDays     int
	Reason          string
	ManagerID       *int64 // snapshot taken at submission
	Status          Status
	ApprovedBy      *int64
	ApprovedDate    *time.Time
	RejectedBy      *int64
	RejectedDate    *time.Time
	RejectionReason *string
	CreatedAt       time.Time
}

// RequestView is a request joined with display names for listings.
type RequestView struct {
	LeaveRequest
	LeaveTypeName string
	UserName      string
	Department    *string
	ManagerName   *string
}

// RequestFilter narrows ListRequests. Nil fields are not applied.
type RequestFilter struct {
	UserID    *int64
	ManagerID *int64
	Status    *Status
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   Role
}

// =============================================================================
// DATES
// =============================================================================

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, validation("Invalid date format (use YYYY-MM-DD)")
	}
	return t, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
