package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/warp/leave-service/leave"
)

type balanceRow struct {
	ID            int64  `db:"id"`
	UserID        int64  `db:"user_id"`
	LeaveTypeID   int64  `db:"leave_type_id"`
	LeaveTypeName string `db:"leave_type_name"`
	Year          int    `db:"year"`
	TotalDays     int    `db:"total_days"`
	UsedDays      int    `db:"used_days"`
	RemainingDays int    `db:"remaining_days"`
}

func (r balanceRow) toBalance() leave.Balance {
	return leave.Balance{
		ID:            r.ID,
		UserID:        r.UserID,
		LeaveTypeID:   r.LeaveTypeID,
		LeaveTypeName: r.LeaveTypeName,
		Year:          r.Year,
		TotalDays:     r.TotalDays,
		UsedDays:      r.UsedDays,
		RemainingDays: r.RemainingDays,
	}
}

const balanceSelect = `
	SELECT b.id, b.user_id, b.leave_type_id, lt.name AS leave_type_name,
	       b.year, b.total_days, b.used_days, b.remaining_days
	FROM leave_balances b
	JOIN leave_types lt ON lt.id = b.leave_type_id
`

// InsertBalanceIfAbsent creates the row unless one already exists for the
// same (user, leave type, year).
func (s *Store) InsertBalanceIfAbsent(ctx context.Context, b leave.Balance) error {
	_, err := s.exec(ctx, `
		INSERT INTO leave_balances (user_id, leave_type_id, year, total_days, used_days, remaining_days)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, leave_type_id, year) DO NOTHING
	`, b.UserID, b.LeaveTypeID, b.Year, b.TotalDays, b.UsedDays, b.RemainingDays)
	return err
}

func (s *Store) GetBalance(ctx context.Context, userID, leaveTypeID int64, year int) (*leave.Balance, error) {
	var row balanceRow
	err := s.get(ctx, &row, balanceSelect+`
		WHERE b.user_id = ? AND b.leave_type_id = ? AND b.year = ?
	`, userID, leaveTypeID, year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	b := row.toBalance()
	return &b, nil
}

// ListBalances returns the user's rows for a year ordered by leave type name.
func (s *Store) ListBalances(ctx context.Context, userID int64, year int) ([]leave.Balance, error) {
	var rows []balanceRow
	err := s.selectAll(ctx, &rows, balanceSelect+`
		WHERE b.user_id = ? AND b.year = ?
		ORDER BY lt.name
	`, userID, year)
	if err != nil {
		return nil, translate(err)
	}
	balances := make([]leave.Balance, 0, len(rows))
	for _, r := range rows {
		balances = append(balances, r.toBalance())
	}
	return balances, nil
}

// DebitBalance is a guarded decrement: it matches nothing when fewer than
// days remain.
func (s *Store) DebitBalance(ctx context.Context, userID, leaveTypeID int64, year, days int) (bool, error) {
	n, err := s.exec(ctx, `
		UPDATE leave_balances
		SET used_days = used_days + ?, remaining_days = remaining_days - ?
		WHERE user_id = ? AND leave_type_id = ? AND year = ? AND remaining_days >= ?
	`, days, days, userID, leaveTypeID, year, days)
	return n > 0, err
}

// UpsertBalance writes the given values as-is.
func (s *Store) UpsertBalance(ctx context.Context, b leave.Balance) error {
	_, err := s.exec(ctx, `
		INSERT INTO leave_balances (user_id, leave_type_id, year, total_days, used_days, remaining_days)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, leave_type_id, year) DO UPDATE SET
			total_days = excluded.total_days,
			used_days = excluded.used_days,
			remaining_days = excluded.remaining_days
	`, b.UserID, b.LeaveTypeID, b.Year, b.TotalDays, b.UsedDays, b.RemainingDays)
	return err
}
