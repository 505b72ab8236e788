/*
store.go - Persistence interface for the leave engine

PURPOSE:
  Defines the boundary between lifecycle logic and the relational store.
  Implementations must provide ACID transactions with at least
  read-committed isolation.

CONVENTIONS:
  - Get* methods return (nil, nil) when the row does not exist.
  - Conditional writes return (false, nil) when no row matched.
  - Constraint violations come back as *Error with ErrConflict or
    ErrValidation kinds.

COMPARE-AND-SWAP:
  MarkApproved/MarkRejected only match rows still pending (and, for a
  scoped reviewer, whose captured manager is the reviewer). Two concurrent
  approvals of the same request therefore cannot both match.

IMPLEMENTATIONS:
  - store/sqlstore: sqlite3 and postgres via sqlx
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Interface for persistence
// =============================================================================

type Store interface {
	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id int64, role Role) (bool, error)
	UpdateUserManager(ctx context.Context, id int64, managerID *int64) (bool, error)

	// Leave types
	ListLeaveTypes(ctx context.Context) ([]LeaveType, error)
	GetLeaveType(ctx context.Context, id int64) (*LeaveType, error)

	// Balances
	InsertBalanceIfAbsent(ctx context.Context, b Balance) error
	GetBalance(ctx context.Context, userID, leaveTypeID int64, year int) (*Balance, error)
	ListBalances(ctx context.Context, userID int64, year int) ([]Balance, error)
	// DebitBalance moves days from remaining to used, only if at least
	// that many days remain.
	DebitBalance(ctx context.Context, userID, leaveTypeID int64, year, days int) (bool, error)
	UpsertBalance(ctx context.Context, b Balance) error

	// Requests
	CreateRequest(ctx context.Context, r *LeaveRequest) error
	GetRequest(ctx context.Context, id int64) (*LeaveRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]RequestView, error)
	MarkApproved(ctx context.Context, id int64, scope ReviewScope, by int64, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id int64, scope ReviewScope, by int64, at time.Time, reason string) (bool, error)

	// Rollups
	CountUsersByRole(ctx context.Context) (UserCounts, error)
	CountRequestsByStatus(ctx context.Context) (RequestCounts, error)
	CountDepartments(ctx context.Context) (int, error)
	SumBalancesByType(ctx context.Context, year int) ([]TypeUsage, error)
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
