package leave_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-service/leave"
)

func TestRegister_CreatesEmployeeWithOpeningBalances(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Register(f.ctx, leave.NewAccount{
		Name:       " New Hire ",
		Email:      "New.Hire@Example.com",
		Password:   "secret",
		Department: "Sales",
		Role:       "admin", // ignored
	})
	require.NoError(t, err)

	assert.Equal(t, leave.RoleEmployee, u.Role)
	assert.Equal(t, "New Hire", u.Name)
	assert.Equal(t, "new.hire@example.com", u.Email)
	assert.Nil(t, u.ManagerID)
	require.NotNil(t, u.Department)
	assert.Equal(t, "Sales", *u.Department)
	assert.NotEqual(t, "secret", u.PasswordHash)

	balances, err := f.svc.MyBalance(f.ctx, as(u))
	require.NoError(t, err)
	require.Len(t, balances, 5)
	for _, b := range balances {
		assert.Equal(t, testNow.Year(), b.Year)
		assert.Equal(t, 0, b.UsedDays)
		assert.Equal(t, b.TotalDays, b.RemainingDays, b.LeaveTypeName)
	}
}

func TestRegister_DuplicateEmailLeavesNoTrace(t *testing.T) {
	f := newFixture(t)

	before, err := f.svc.ListUsers(f.ctx, as(f.admin))
	require.NoError(t, err)

	_, err = f.svc.Register(f.ctx, leave.NewAccount{
		Name: "Copy", Email: "EMPLOYEE@example.com", Password: "secret",
	})
	assert.ErrorIs(t, err, leave.ErrConflict)
	assert.Equal(t, "User already exists", err.Error())

	after, err := f.svc.ListUsers(f.ctx, as(f.admin))
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(f.ctx, leave.NewAccount{Email: "x@example.com", Password: "secret"})
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Login(f.ctx, " Employee@Example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, u.ID)

	_, wrongPassword := f.svc.Login(f.ctx, "employee@example.com", "nope")
	_, unknownEmail := f.svc.Login(f.ctx, "ghost@example.com", "secret")

	assert.ErrorIs(t, wrongPassword, leave.ErrUnauthenticated)
	assert.ErrorIs(t, unknownEmail, leave.ErrUnauthenticated)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = f.svc.Login(f.ctx, "", "")
	assert.ErrorIs(t, err, leave.ErrValidation)
}

func TestCreateStaff(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateStaff(f.ctx, as(f.manager), leave.NewAccount{
		Name: "X", Email: "x@example.com", Password: "secret", Role: "employee",
	})
	assert.ErrorIs(t, err, leave.ErrForbidden)

	_, err = f.svc.CreateStaff(f.ctx, as(f.admin), leave.NewAccount{
		Name: "X", Email: "x@example.com", Password: "secret", Role: "owner",
	})
	assert.ErrorIs(t, err, leave.ErrValidation)

	_, err = f.svc.CreateStaff(f.ctx, as(f.admin), leave.NewAccount{
		Name: "X", Email: "x@example.com", Password: "secret", Role: "employee",
		ManagerID: &f.employee.ID,
	})
	assert.ErrorIs(t, err, leave.ErrValidation, "employees cannot manage")

	missing := int64(999)
	_, err = f.svc.CreateStaff(f.ctx, as(f.admin), leave.NewAccount{
		Name: "X", Email: "x@example.com", Password: "secret", Role: "employee",
		ManagerID: &missing,
	})
	assert.ErrorIs(t, err, leave.ErrValidation)

	admin2, err := f.svc.CreateStaff(f.ctx, as(f.admin), leave.NewAccount{
		Name: "Second Admin", Email: "admin2@example.com", Password: "secret", Role: "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.RoleAdmin, admin2.Role)
}

func TestUpdateRole_AppliesToResolvedActor(t *testing.T) {
	f := newFixture(t)

	updated, err := f.svc.UpdateRole(f.ctx, as(f.admin), f.employee.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, leave.RoleManager, updated.Role)

	actor, err := f.svc.ResolveActor(f.ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.RoleManager, actor.Role)

	_, err = f.svc.UpdateRole(f.ctx, as(f.admin), 999, "manager")
	assert.ErrorIs(t, err, leave.ErrNotFound)

	_, err = f.svc.UpdateRole(f.ctx, as(f.admin), f.employee.ID, "boss")
	assert.ErrorIs(t, err, leave.ErrValidation)

	_, err = f.svc.UpdateRole(f.ctx, as(f.manager), f.employee.ID, "admin")
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

func TestAssignManager(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AssignManager(f.ctx, as(f.admin), f.manager.ID, &f.manager.ID)
	assert.ErrorIs(t, err, leave.ErrValidation)

	u, err := f.svc.AssignManager(f.ctx, as(f.admin), f.employee.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, u.ManagerID)

	u, err = f.svc.AssignManager(f.ctx, as(f.admin), f.employee.ID, &f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, *u.ManagerID)

	_, err = f.svc.AssignManager(f.ctx, as(f.admin), 999, nil)
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestResolveActor_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ResolveActor(f.ctx, 999)
	assert.ErrorIs(t, err, leave.ErrUnauthenticated)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Me(f.ctx, as(f.employee))
	require.NoError(t, err)
	assert.Equal(t, f.employee.Email, u.Email)

	var le *leave.Error
	_, err = f.svc.Me(f.ctx, leave.Actor{UserID: 999, Role: leave.RoleEmployee})
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "User not found", le.Message)
}
