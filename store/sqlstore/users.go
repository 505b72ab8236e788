package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/warp/leave-service/leave"
)

// =============================================================================
// USERS
// =============================================================================

type userRow struct {
	ID         int64          `db:"id"`
	Name       string         `db:"name"`
	Email      string         `db:"email"`
	Password   string         `db:"password"`
	Role       string         `db:"role"`
	Department sql.NullString `db:"department"`
	ManagerID  sql.NullInt64  `db:"manager_id"`
	CreatedAt  string         `db:"created_at"`
}

func (r userRow) toUser() leave.User {
	return leave.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		Role:         leave.Role(r.Role),
		Department:   nullableString(r.Department),
		ManagerID:    nullableInt(r.ManagerID),
		CreatedAt:    parseTime(r.CreatedAt),
	}
}

const userColumns = `id, name, email, password, role, department, manager_id, created_at`

// CreateUser inserts u and sets u.ID.
func (s *Store) CreateUser(ctx context.Context, u *leave.User) error {
	id, err := s.insert(ctx, `
		INSERT INTO users (name, email, password, role, department, manager_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Department, u.ManagerID, formatTime(u.CreatedAt))
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*leave.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail matches the stored, already normalized email exactly.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*leave.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *Store) getUser(ctx context.Context, query string, args ...any) (*leave.User, error) {
	var row userRow
	err := s.get(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	u := row.toUser()
	return &u, nil
}

// ListUsers returns every account, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]leave.User, error) {
	var rows []userRow
	if err := s.selectAll(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, translate(err)
	}
	users := make([]leave.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id int64, role leave.Role) (bool, error) {
	n, err := s.exec(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	return n > 0, err
}

func (s *Store) UpdateUserManager(ctx context.Context, id int64, managerID *int64) (bool, error) {
	n, err := s.exec(ctx, `UPDATE users SET manager_id = ? WHERE id = ?`, managerID, id)
	return n > 0, err
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

type leaveTypeRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	DaysPerYear int    `db:"days_per_year"`
}

func (s *Store) ListLeaveTypes(ctx context.Context) ([]leave.LeaveType, error) {
	var rows []leaveTypeRow
	if err := s.selectAll(ctx, &rows, `SELECT id, name, days_per_year FROM leave_types ORDER BY name`); err != nil {
		return nil, translate(err)
	}
	types := make([]leave.LeaveType, 0, len(rows))
	for _, r := range rows {
		types = append(types, leave.LeaveType{ID: r.ID, Name: r.Name, DaysPerYear: r.DaysPerYear})
	}
	return types, nil
}

func (s *Store) GetLeaveType(ctx context.Context, id int64) (*leave.LeaveType, error) {
	var r leaveTypeRow
	err := s.get(ctx, &r, `SELECT id, name, days_per_year FROM leave_types WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &leave.LeaveType{ID: r.ID, Name: r.Name, DaysPerYear: r.DaysPerYear}, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullableInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
