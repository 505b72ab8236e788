/*
sqlstore_test.go - Tests for the SQL store against in-memory SQLite

Tests for:
- Schema creation and leave type seeding
- Constraint translation (duplicate email, bad foreign key)
- Guarded debit and balance upsert
- Compare-and-swap approval/rejection with manager scope
- Request listings and rollups
*/
package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-service/leave"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, email string, role leave.Role, managerID *int64) *leave.User {
	t.Helper()
	u := &leave.User{
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		ManagerID:    managerID,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func annualLeave(t *testing.T, s *Store) leave.LeaveType {
	t.Helper()
	types, err := s.ListLeaveTypes(context.Background())
	require.NoError(t, err)
	for _, lt := range types {
		if lt.Name == "Annual Leave" {
			return lt
		}
	}
	t.Fatal("annual leave not seeded")
	return leave.LeaveType{}
}

func TestMigrate_SeedsLeaveTypes(t *testing.T) {
	s := newTestStore(t)

	types, err := s.ListLeaveTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, len(DefaultLeaveTypes))

	byName := map[string]int{}
	for _, lt := range types {
		byName[lt.Name] = lt.DaysPerYear
	}
	assert.Equal(t, 21, byName["Annual Leave"])
	assert.Equal(t, 14, byName["Sick Leave"])
	assert.Equal(t, 5, byName["Personal Leave"])
	assert.Equal(t, 90, byName["Maternity Leave"])
	assert.Equal(t, 14, byName["Paternity Leave"])

	// Ordered by name.
	assert.Equal(t, "Annual Leave", types[0].Name)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.migrate(context.Background()))

	types, err := s.ListLeaveTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, len(DefaultLeaveTypes))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

// =============================================================================
// USERS
// =============================================================================

func TestCreateUser_DuplicateEmailIsConflict(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "dup@example.com", leave.RoleEmployee, nil)

	err := s.CreateUser(context.Background(), &leave.User{
		Name: "Again", Email: "dup@example.com", PasswordHash: "x",
		Role: leave.RoleEmployee, CreatedAt: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrConflict))

	var e *leave.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Duplicate field value entered", e.Message)
}

func TestCreateUser_UnknownManagerIsValidation(t *testing.T) {
	s := newTestStore(t)
	missing := int64(9999)

	err := s.CreateUser(context.Background(), &leave.User{
		Name: "Orphan", Email: "orphan@example.com", PasswordHash: "x",
		Role: leave.RoleEmployee, ManagerID: &missing, CreatedAt: time.Now(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestGetUser_Missing(t *testing.T) {
	s := newTestStore(t)

	u, err := s.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.GetUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateUserRoleAndManager(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr@example.com", leave.RoleManager, nil)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, nil)

	ok, err := s.UpdateUserRole(ctx, emp.ID, leave.RoleManager)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateUserManager(ctx, emp.ID, &mgr.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetUser(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.RoleManager, got.Role)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, mgr.ID, *got.ManagerID)

	ok, err = s.UpdateUserManager(ctx, emp.ID, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = s.GetUser(ctx, emp.ID)
	assert.Nil(t, got.ManagerID)

	ok, err = s.UpdateUserRole(ctx, 9999, leave.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUserRole_CheckConstraint(t *testing.T) {
	s := newTestStore(t)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, nil)

	_, err := s.UpdateUserRole(context.Background(), emp.ID, leave.Role("superuser"))
	assert.ErrorIs(t, err, leave.ErrValidation)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestInsertBalanceIfAbsent_KeepsExistingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@example.com", leave.RoleEmployee, nil)
	lt := annualLeave(t, s)

	b := leave.Balance{UserID: u.ID, LeaveTypeID: lt.ID, Year: 2026, TotalDays: 21, RemainingDays: 21}
	require.NoError(t, s.InsertBalanceIfAbsent(ctx, b))

	b.TotalDays, b.RemainingDays = 99, 99
	require.NoError(t, s.InsertBalanceIfAbsent(ctx, b))

	got, err := s.GetBalance(ctx, u.ID, lt.ID, 2026)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 21, got.TotalDays)
	assert.Equal(t, "Annual Leave", got.LeaveTypeName)
}

func TestDebitBalance_Guarded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@example.com", leave.RoleEmployee, nil)
	lt := annualLeave(t, s)
	require.NoError(t, s.InsertBalanceIfAbsent(ctx, leave.Balance{
		UserID: u.ID, LeaveTypeID: lt.ID, Year: 2026, TotalDays: 5, RemainingDays: 5,
	}))

	ok, err := s.DebitBalance(ctx, u.ID, lt.ID, 2026, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DebitBalance(ctx, u.ID, lt.ID, 2026, 3)
	require.NoError(t, err)
	assert.False(t, ok, "only 2 days remain")

	got, err := s.GetBalance(ctx, u.ID, lt.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UsedDays)
	assert.Equal(t, 2, got.RemainingDays)
	assert.Equal(t, got.TotalDays-got.UsedDays, got.RemainingDays)
}

func TestUpsertBalance_OverwritesAndCreates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@example.com", leave.RoleEmployee, nil)
	lt := annualLeave(t, s)

	require.NoError(t, s.UpsertBalance(ctx, leave.Balance{
		UserID: u.ID, LeaveTypeID: lt.ID, Year: 2026, TotalDays: 30, UsedDays: 4, RemainingDays: 26,
	}))
	require.NoError(t, s.UpsertBalance(ctx, leave.Balance{
		UserID: u.ID, LeaveTypeID: lt.ID, Year: 2026, TotalDays: 25, UsedDays: 5, RemainingDays: 20,
	}))

	balances, err := s.ListBalances(ctx, u.ID, 2026)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, 25, balances[0].TotalDays)
	assert.Equal(t, 5, balances[0].UsedDays)
	assert.Equal(t, 20, balances[0].RemainingDays)
}

// =============================================================================
// REQUESTS
// =============================================================================

func createRequest(t *testing.T, s *Store, userID, leaveTypeID int64, managerID *int64) *leave.LeaveRequest {
	t.Helper()
	r := &leave.LeaveRequest{
		UserID:      userID,
		LeaveTypeID: leaveTypeID,
		StartDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		WorkingDays: 3,
		Reason:      "trip",
		ManagerID:   managerID,
		Status:      leave.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.CreateRequest(context.Background(), r))
	return r
}

func TestCreateAndGetRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr@example.com", leave.RoleManager, nil)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, &mgr.ID)
	lt := annualLeave(t, s)

	r := createRequest(t, s, emp.ID, lt.ID, &mgr.ID)
	assert.NotZero(t, r.ID)

	got, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-02", got.StartDate.Format(leave.DateLayout))
	assert.Equal(t, "2026-03-04", got.EndDate.Format(leave.DateLayout))
	assert.Equal(t, 3, got.WorkingDays)
	assert.Equal(t, leave.StatusPending, got.Status)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, mgr.ID, *got.ManagerID)
	assert.Nil(t, got.ApprovedBy)
	assert.Nil(t, got.RejectionReason)

	missing, err := s.GetRequest(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkApproved_OnlyOnceAndScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr@example.com", leave.RoleManager, nil)
	other := createUser(t, s, "other@example.com", leave.RoleManager, nil)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, &mgr.ID)
	lt := annualLeave(t, s)
	r := createRequest(t, s, emp.ID, lt.ID, &mgr.ID)
	now := time.Now().UTC()

	// Another manager matches nothing.
	ok, err := s.MarkApproved(ctx, r.ID, leave.ReviewScope{ManagerID: &other.ID}, other.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.MarkApproved(ctx, r.ID, leave.ReviewScope{ManagerID: &mgr.ID}, mgr.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second attempt finds no pending row.
	ok, err = s.MarkApproved(ctx, r.ID, leave.ReviewScope{}, mgr.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.MarkRejected(ctx, r.ID, leave.ReviewScope{}, mgr.ID, now, "late")
	require.NoError(t, err)
	assert.False(t, ok, "terminal state cannot change")

	got, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, mgr.ID, *got.ApprovedBy)
	assert.NotNil(t, got.ApprovedDate)
}

func TestMarkRejected_StoresReason(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := createUser(t, s, "admin@example.com", leave.RoleAdmin, nil)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, nil)
	lt := annualLeave(t, s)
	r := createRequest(t, s, emp.ID, lt.ID, nil)

	ok, err := s.MarkRejected(ctx, r.ID, leave.ReviewScope{}, admin.ID, time.Now(), "busy season")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "busy season", *got.RejectionReason)
	require.NotNil(t, got.RejectedBy)
	assert.Equal(t, admin.ID, *got.RejectedBy)
}

func TestListRequests_FiltersAndJoins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr@example.com", leave.RoleManager, nil)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, &mgr.ID)
	loner := createUser(t, s, "loner@example.com", leave.RoleEmployee, nil)
	lt := annualLeave(t, s)

	first := createRequest(t, s, emp.ID, lt.ID, &mgr.ID)
	second := createRequest(t, s, emp.ID, lt.ID, &mgr.ID)
	createRequest(t, s, loner.ID, lt.ID, nil)

	_, err := s.MarkRejected(ctx, first.ID, leave.ReviewScope{}, mgr.ID, time.Now(), "no")
	require.NoError(t, err)

	all, err := s.ListRequests(ctx, leave.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := s.ListRequests(ctx, leave.RequestFilter{UserID: &emp.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, "Annual Leave", mine[0].LeaveTypeName)
	assert.Equal(t, emp.Name, mine[0].UserName)
	require.NotNil(t, mine[0].ManagerName)
	assert.Equal(t, mgr.Name, *mine[0].ManagerName)

	pending := leave.StatusPending
	team, err := s.ListRequests(ctx, leave.RequestFilter{ManagerID: &mgr.ID, Status: &pending})
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, second.ID, team[0].ID)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx leave.Store) error {
		u := &leave.User{Name: "Tx", Email: "tx@example.com", PasswordHash: "x", Role: leave.RoleEmployee, CreatedAt: time.Now()}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := s.GetUserByEmail(ctx, "tx@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestWithTx_Commits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx leave.Store) error {
		u := &leave.User{Name: "Tx", Email: "tx@example.com", PasswordHash: "x", Role: leave.RoleEmployee, CreatedAt: time.Now()}
		return tx.CreateUser(ctx, u)
	})
	require.NoError(t, err)

	u, err := s.GetUserByEmail(ctx, "tx@example.com")
	require.NoError(t, err)
	assert.NotNil(t, u)
}

// =============================================================================
// ROLLUPS
// =============================================================================

func TestRollups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sales, eng := "Sales", "Engineering"

	mgr := createUser(t, s, "mgr@example.com", leave.RoleManager, nil)
	createUser(t, s, "admin@example.com", leave.RoleAdmin, nil)
	emp := createUser(t, s, "emp@example.com", leave.RoleEmployee, &mgr.ID)
	createUser(t, s, "emp2@example.com", leave.RoleEmployee, nil)
	_, err := s.ext.ExecContext(ctx, `UPDATE users SET department = ? WHERE id = ?`, sales, emp.ID)
	require.NoError(t, err)
	_, err = s.ext.ExecContext(ctx, `UPDATE users SET department = ? WHERE id = ?`, eng, mgr.ID)
	require.NoError(t, err)

	users, err := s.CountUsersByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, leave.UserCounts{Employees: 2, Managers: 1, Admins: 1, Total: 4}, users)

	depts, err := s.CountDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, depts)

	lt := annualLeave(t, s)
	r := createRequest(t, s, emp.ID, lt.ID, &mgr.ID)
	createRequest(t, s, emp.ID, lt.ID, &mgr.ID)
	_, err = s.MarkApproved(ctx, r.ID, leave.ReviewScope{}, mgr.ID, time.Now())
	require.NoError(t, err)

	requests, err := s.CountRequestsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, leave.RequestCounts{Pending: 1, Approved: 1, Rejected: 0, Total: 2}, requests)

	require.NoError(t, s.UpsertBalance(ctx, leave.Balance{
		UserID: emp.ID, LeaveTypeID: lt.ID, Year: 2026, TotalDays: 21, UsedDays: 3, RemainingDays: 18,
	}))
	require.NoError(t, s.UpsertBalance(ctx, leave.Balance{
		UserID: mgr.ID, LeaveTypeID: lt.ID, Year: 2026, TotalDays: 21, UsedDays: 0, RemainingDays: 21,
	}))

	usage, err := s.SumBalancesByType(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, usage, len(DefaultLeaveTypes))
	assert.Equal(t, "Annual Leave", usage[0].LeaveTypeName)
	assert.Equal(t, 42, usage[0].TotalDays)
	assert.Equal(t, 3, usage[0].UsedDays)
	assert.Equal(t, 39, usage[0].RemainingDays)
	assert.Equal(t, 0, usage[1].TotalDays, "types without balances report zeros")
}
