package sqlstore

import (
	"context"

	"github.com/warp/leave-service/leave"
)

// =============================================================================
// ROLLUPS - Admin statistics
// =============================================================================

func (s *Store) CountUsersByRole(ctx context.Context) (leave.UserCounts, error) {
	var row struct {
		Employees int `db:"employees"`
		Managers  int `db:"managers"`
		Admins    int `db:"admins"`
		Total     int `db:"total"`
	}
	err := s.get(ctx, &row, `
		SELECT
			COALESCE(SUM(CASE WHEN role = 'employee' THEN 1 ELSE 0 END), 0) AS employees,
			COALESCE(SUM(CASE WHEN role = 'manager' THEN 1 ELSE 0 END), 0) AS managers,
			COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0) AS admins,
			COUNT(*) AS total
		FROM users
	`)
	if err != nil {
		return leave.UserCounts{}, translate(err)
	}
	return leave.UserCounts{
		Employees: row.Employees,
		Managers:  row.Managers,
		Admins:    row.Admins,
		Total:     row.Total,
	}, nil
}

func (s *Store) CountRequestsByStatus(ctx context.Context) (leave.RequestCounts, error) {
	var row struct {
		Pending  int `db:"pending"`
		Approved int `db:"approved"`
		Rejected int `db:"rejected"`
		Total    int `db:"total"`
	}
	err := s.get(ctx, &row, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected,
			COUNT(*) AS total
		FROM leave_requests
	`)
	if err != nil {
		return leave.RequestCounts{}, translate(err)
	}
	return leave.RequestCounts{
		Pending:  row.Pending,
		Approved: row.Approved,
		Rejected: row.Rejected,
		Total:    row.Total,
	}, nil
}

// CountDepartments counts distinct non-empty department names.
func (s *Store) CountDepartments(ctx context.Context) (int, error) {
	var n int
	err := s.get(ctx, &n, `
		SELECT COUNT(DISTINCT department)
		FROM users
		WHERE department IS NOT NULL AND department <> ''
	`)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// SumBalancesByType sums every user's balance per leave type for the year.
// Leave types nobody holds yet appear with zeros.
func (s *Store) SumBalancesByType(ctx context.Context, year int) ([]leave.TypeUsage, error) {
	var rows []struct {
		LeaveTypeID   int64  `db:"leave_type_id"`
		LeaveTypeName string `db:"leave_type_name"`
		TotalDays     int    `db:"total_days"`
		UsedDays      int    `db:"used_days"`
		RemainingDays int    `db:"remaining_days"`
	}
	err := s.selectAll(ctx, &rows, `
		SELECT
			lt.id AS leave_type_id,
			lt.name AS leave_type_name,
			COALESCE(SUM(b.total_days), 0) AS total_days,
			COALESCE(SUM(b.used_days), 0) AS used_days,
			COALESCE(SUM(b.remaining_days), 0) AS remaining_days
		FROM leave_types lt
		LEFT JOIN leave_balances b ON b.leave_type_id = lt.id AND b.year = ?
		GROUP BY lt.id, lt.name
		ORDER BY lt.name
	`, year)
	if err != nil {
		return nil, translate(err)
	}

	usage := make([]leave.TypeUsage, 0, len(rows))
	for _, r := range rows {
		usage = append(usage, leave.TypeUsage{
			LeaveTypeID:   r.LeaveTypeID,
			LeaveTypeName: r.LeaveTypeName,
			TotalDays:     r.TotalDays,
			UsedDays:      r.UsedDays,
			RemainingDays: r.RemainingDays,
		})
	}
	return usage, nil
}
