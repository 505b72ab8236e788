package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/warp/leave-service/leave"
)

type requestRow struct {
	ID              int64          `db:"id"`
	UserID          int64          `db:"user_id"`
	LeaveTypeID     int64          `db:"leave_type_id"`
	StartDate       string         `db:"start_date"`
	EndDate         string         `db:"end_date"`
	WorkingDays     int            `db:"working_days"`
	Reason          string         `db:"reason"`
	ManagerID       sql.NullInt64  `db:"manager_id"`
	Status          string         `db:"status"`
	ApprovedBy      sql.NullInt64  `db:"approved_by"`
	ApprovedDate    sql.NullString `db:"approved_date"`
	RejectedBy      sql.NullInt64  `db:"rejected_by"`
	RejectedDate    sql.NullString `db:"rejected_date"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	CreatedAt       string         `db:"created_at"`
}

func (r requestRow) toRequest() leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:              r.ID,
		UserID:          r.UserID,
		LeaveTypeID:     r.LeaveTypeID,
		StartDate:       parseDate(r.StartDate),
		EndDate:         parseDate(r.EndDate),
		WorkingDays:     r.WorkingDays,
		Reason:          r.Reason,
		ManagerID:       nullableInt(r.ManagerID),
		Status:          leave.Status(r.Status),
		ApprovedBy:      nullableInt(r.ApprovedBy),
		ApprovedDate:    nullableTime(r.ApprovedDate),
		RejectedBy:      nullableInt(r.RejectedBy),
		RejectedDate:    nullableTime(r.RejectedDate),
		RejectionReason: nullableString(r.RejectionReason),
		CreatedAt:       parseTime(r.CreatedAt),
	}
}

type requestViewRow struct {
	requestRow
	LeaveTypeName string         `db:"leave_type_name"`
	UserName      string         `db:"user_name"`
	Department    sql.NullString `db:"department"`
	ManagerName   sql.NullString `db:"manager_name"`
}

const requestColumns = `
	r.id, r.user_id, r.leave_type_id, r.start_date, r.end_date, r.working_days,
	r.reason, r.manager_id, r.status, r.approved_by, r.approved_date,
	r.rejected_by, r.rejected_date, r.rejection_reason, r.created_at
`

// CreateRequest inserts r and sets r.ID.
func (s *Store) CreateRequest(ctx context.Context, r *leave.LeaveRequest) error {
	id, err := s.insert(ctx, `
		INSERT INTO leave_requests
			(user_id, leave_type_id, start_date, end_date, working_days, reason, manager_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, r.UserID, r.LeaveTypeID, formatDate(r.StartDate), formatDate(r.EndDate),
		r.WorkingDays, r.Reason, r.ManagerID, string(r.Status), formatTime(r.CreatedAt))
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id int64) (*leave.LeaveRequest, error) {
	var row requestRow
	err := s.get(ctx, &row, `SELECT `+requestColumns+` FROM leave_requests r WHERE r.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	req := row.toRequest()
	return &req, nil
}

// ListRequests returns requests joined with display names, newest first.
func (s *Store) ListRequests(ctx context.Context, f leave.RequestFilter) ([]leave.RequestView, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		where = append(where, "r.user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.ManagerID != nil {
		where = append(where, "r.manager_id = ?")
		args = append(args, *f.ManagerID)
	}
	if f.Status != nil {
		where = append(where, "r.status = ?")
		args = append(args, string(*f.Status))
	}

	query := `
		SELECT ` + requestColumns + `,
		       lt.name AS leave_type_name,
		       u.name AS user_name,
		       u.department AS department,
		       m.name AS manager_name
		FROM leave_requests r
		JOIN leave_types lt ON lt.id = r.leave_type_id
		JOIN users u ON u.id = r.user_id
		LEFT JOIN users m ON m.id = r.manager_id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"

	var rows []requestViewRow
	if err := s.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, translate(err)
	}

	views := make([]leave.RequestView, 0, len(rows))
	for _, r := range rows {
		views = append(views, leave.RequestView{
			LeaveRequest:  r.toRequest(),
			LeaveTypeName: r.LeaveTypeName,
			UserName:      r.UserName,
			Department:    nullableString(r.Department),
			ManagerName:   nullableString(r.ManagerName),
		})
	}
	return views, nil
}

// MarkApproved is the compare-and-swap for approval. It matches only a
// pending row inside the reviewer's scope.
func (s *Store) MarkApproved(ctx context.Context, id int64, scope leave.ReviewScope, by int64, at time.Time) (bool, error) {
	query := `
		UPDATE leave_requests
		SET status = ?, approved_by = ?, approved_date = ?
		WHERE id = ? AND status = ?
	`
	args := []any{string(leave.StatusApproved), by, formatTime(at), id, string(leave.StatusPending)}
	if !scope.Unrestricted() {
		query += " AND manager_id = ?"
		args = append(args, *scope.ManagerID)
	}
	n, err := s.exec(ctx, query, args...)
	return n > 0, err
}

// MarkRejected is the compare-and-swap for rejection.
func (s *Store) MarkRejected(ctx context.Context, id int64, scope leave.ReviewScope, by int64, at time.Time, reason string) (bool, error) {
	query := `
		UPDATE leave_requests
		SET status = ?, rejected_by = ?, rejected_date = ?, rejection_reason = ?
		WHERE id = ? AND status = ?
	`
	args := []any{string(leave.StatusRejected), by, formatTime(at), reason, id, string(leave.StatusPending)}
	if !scope.Unrestricted() {
		query += " AND manager_id = ?"
		args = append(args, *scope.ManagerID)
	}
	n, err := s.exec(ctx, query, args...)
	return n > 0, err
}

func nullableTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
