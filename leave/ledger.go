/*
ledger.go - Per-user leave balances

PURPOSE:
  Owns every mutation of leave_balances. Rows are keyed by
  (user, leave type, year) and hold total, used and remaining days.

INVARIANTS:
  1. remaining = total - used after every debit
  2. remaining >= 0 after every committed debit
  3. rows are never deleted

WRITE PATHS:
  Initialize: one row per leave type at account creation, insert-if-absent
  Debit:      approval only, inside the approval transaction
  Adjust:     admin override, trusted, no bounds checks

EXAMPLE:
  err := store.WithTx(ctx, func(tx Store) error {
      return NewLedger(tx).Debit(ctx, userID, typeID, 2026, 3)
  })

SEE ALSO:
  - service.go: Approve, the only caller of Debit
*/
package leave

import (
	"context"
	"fmt"
)

// Ledger reads and writes balances through a Store. Build one per
// transaction with NewLedger(txStore).
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Initialize creates a fresh balance for every leave type. Existing rows
// for the same (user, type, year) are left untouched.
func (l *Ledger) Initialize(ctx context.Context, userID int64, year int) error {
	types, err := l.store.ListLeaveTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leave types: %w", err)
	}

	for _, lt := range types {
		b := Balance{
			UserID:        userID,
			LeaveTypeID:   lt.ID,
			Year:          year,
			TotalDays:     lt.DaysPerYear,
			UsedDays:      0,
			RemainingDays: lt.DaysPerYear,
		}
		if err := l.store.InsertBalanceIfAbsent(ctx, b); err != nil {
			return fmt.Errorf("failed to initialize %s balance: %w", lt.Name, err)
		}
	}
	return nil
}

// Balances returns the user's rows for a year, ordered by leave type name.
func (l *Ledger) Balances(ctx context.Context, userID int64, year int) ([]Balance, error) {
	return l.store.ListBalances(ctx, userID, year)
}

// Debit consumes days from a balance. Must run in the same transaction as
// the approval that triggers it.
func (l *Ledger) Debit(ctx context.Context, userID, leaveTypeID int64, year, days int) error {
	bal, err := l.store.GetBalance(ctx, userID, leaveTypeID, year)
	if err != nil {
		return fmt.Errorf("balance check failed: %w", err)
	}
	if bal == nil {
		return fmt.Errorf("%w: no %d balance for user %d, leave type %d",
			ErrInvalidState, year, userID, leaveTypeID)
	}
	if bal.RemainingDays < days {
		return &InsufficientBalanceError{Remaining: bal.RemainingDays, Requested: days}
	}

	ok, err := l.store.DebitBalance(ctx, userID, leaveTypeID, year, days)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	if !ok {
		// Row changed between read and write.
		return &InsufficientBalanceError{Remaining: bal.RemainingDays, Requested: days}
	}
	return nil
}

// Adjustment is an admin overwrite of a balance row.
type Adjustment struct {
	UserID        int64
	LeaveTypeID   int64
	Year          int
	TotalDays     int
	UsedDays      int
	RemainingDays int
}

// Adjust overwrites the row for (user, type, year), creating it if absent.
func (l *Ledger) Adjust(ctx context.Context, adj Adjustment) (*Balance, error) {
	err := l.store.UpsertBalance(ctx, Balance{
		UserID:        adj.UserID,
		LeaveTypeID:   adj.LeaveTypeID,
		Year:          adj.Year,
		TotalDays:     adj.TotalDays,
		UsedDays:      adj.UsedDays,
		RemainingDays: adj.RemainingDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	bal, err := l.store.GetBalance(ctx, adj.UserID, adj.LeaveTypeID, adj.Year)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return nil, fmt.Errorf("%w: adjusted balance missing", ErrInvalidState)
	}
	return bal, nil
}
