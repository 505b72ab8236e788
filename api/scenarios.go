/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with a small
	organisation: staff accounts, manager links and leave requests in
	different states. Everything goes through leave.Service, so balances
	and snapshots are exactly what the API would produce.

AVAILABLE SCENARIOS:

	small-team:        One manager, two employees, one approved and one
	                   pending request
	multi-department:  Two departments with their own managers, requests
	                   in every state
	balance-exhausted: An employee whose personal leave is fully used

HOW SCENARIOS WORK:
 1. Create accounts as the calling admin (CreateStaff)
 2. Submit requests as the employees
 3. Approve or reject as their managers

USAGE VIA API:

	POST /api/admin/scenarios/load
	{"scenario_id": "small-team"}

NOTE:

	Scenarios never reset data. Every load adds a fresh set of accounts
	whose emails carry a random tag, so loads can be repeated.

	A load is not atomic. Each step is its own service call, so a failure
	partway (a database error, say) leaves the accounts and requests created
	so far in place. They share the tag, which is logged with the failure.
	Missing leave types are checked before any account is created.

SEE ALSO:
  - admin_handlers.go: other admin operations
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leave-service/leave"
)

// DemoPassword is the password of every scenario account.
const DemoPassword = "demo-password"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "One manager with two reports, an approved and a pending request",
	},
	{
		ID:          "multi-department",
		Name:        "Multi-Department",
		Description: "Engineering and Sales with their own managers, requests in every state",
	},
	{
		ID:          "balance-exhausted",
		Name:        "Balance Exhausted",
		Description: "Employee with no personal leave left after an approved week off",
	},
}

// ListScenarios returns available scenarios.
// GET /api/admin/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeList(w, scenarios)
}

// LoadScenario creates the accounts and requests of a scenario.
// POST /api/admin/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	def, ok := findScenario(req.ScenarioID)
	if !ok {
		h.fail(w, r, leave.NewError(leave.ErrValidation, "Unknown scenario", nil))
		return
	}

	l, err := newScenarioLoader(r.Context(), h.Service, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch def.ID {
	case "small-team":
		err = l.smallTeam()
	case "multi-department":
		err = l.multiDepartment()
	case "balance-exhausted":
		err = l.balanceExhausted()
	}
	if err != nil {
		h.Logger.WithField("scenario", def.ID).
			WithField("tag", l.tag).
			WithField("accounts_created", len(l.accounts)).
			WithError(err).
			Warn("scenario load failed")
		h.fail(w, r, fmt.Errorf("failed to load scenario %s: %w", def.ID, err))
		return
	}

	h.Logger.WithField("scenario", def.ID).
		WithField("accounts", len(l.accounts)).
		Info("scenario loaded")

	writeData(w, http.StatusCreated, ScenarioResultDTO{
		Scenario: def,
		Accounts: l.accounts,
		Requests: l.requests,
	})
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

// scenarioLoader accumulates what a scenario created.
type scenarioLoader struct {
	ctx   context.Context
	svc   *leave.Service
	admin leave.Actor
	tag   string
	types map[string]int64

	// monday is the first Monday at least a week after today.
	monday time.Time

	accounts []DemoAccountDTO
	requests []LeaveRequestDTO
}

func newScenarioLoader(ctx context.Context, svc *leave.Service, admin leave.Actor) (*scenarioLoader, error) {
	types, err := svc.LeaveTypes(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(types))
	for _, lt := range types {
		byName[lt.Name] = lt.ID
	}

	return &scenarioLoader{
		ctx:    ctx,
		svc:    svc,
		admin:  admin,
		tag:    strings.SplitN(uuid.NewString(), "-", 2)[0],
		types:  byName,
		monday: nextMonday(svc.Now().UTC().AddDate(0, 0, 7)),
	}, nil
}

func nextMonday(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// requireTypes fails before anything is written when a leave type the
// scenario uses is not seeded.
func (l *scenarioLoader) requireTypes(names ...string) error {
	for _, name := range names {
		if _, ok := l.types[name]; !ok {
			return fmt.Errorf("%w: leave type %q is not seeded", leave.ErrInvalidState, name)
		}
	}
	return nil
}

func (l *scenarioLoader) staff(name, role, department string, manager *leave.User) (*leave.User, error) {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	in := leave.NewAccount{
		Name:       name,
		Email:      fmt.Sprintf("%s+%s@demo.example.com", local, l.tag),
		Password:   DemoPassword,
		Role:       role,
		Department: department,
	}
	if manager != nil {
		id := manager.ID
		in.ManagerID = &id
	}

	u, err := l.svc.CreateStaff(l.ctx, l.admin, in)
	if err != nil {
		return nil, err
	}
	l.accounts = append(l.accounts, DemoAccountDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		Password: DemoPassword,
	})
	return u, nil
}

// submit files a request starting weekOffset weeks after l.monday and
// covering days working days (Monday-based, at most 5).
func (l *scenarioLoader) submit(u *leave.User, leaveType string, weekOffset, days int, reason string) (*leave.LeaveRequest, error) {
	if err := l.requireTypes(leaveType); err != nil {
		return nil, err
	}
	typeID := l.types[leaveType]
	start := l.monday.AddDate(0, 0, 7*weekOffset)
	end := start.AddDate(0, 0, days-1)

	req, err := l.svc.Submit(l.ctx, leave.Actor{UserID: u.ID, Role: u.Role}, leave.SubmitInput{
		LeaveTypeID: typeID,
		StartDate:   start.Format(leave.DateLayout),
		EndDate:     end.Format(leave.DateLayout),
		Reason:      reason,
	})
	if err != nil {
		return nil, err
	}
	l.requests = append(l.requests, toLeaveRequestDTO(*req))
	return req, nil
}

func (l *scenarioLoader) approve(reviewer *leave.User, req *leave.LeaveRequest) error {
	approved, err := l.svc.Approve(l.ctx, leave.Actor{UserID: reviewer.ID, Role: reviewer.Role}, req.ID)
	if err != nil {
		return err
	}
	l.replace(approved)
	return nil
}

func (l *scenarioLoader) reject(reviewer *leave.User, req *leave.LeaveRequest, reason string) error {
	rejected, err := l.svc.Reject(l.ctx, leave.Actor{UserID: reviewer.ID, Role: reviewer.Role}, req.ID, reason)
	if err != nil {
		return err
	}
	l.replace(rejected)
	return nil
}

func (l *scenarioLoader) replace(req *leave.LeaveRequest) {
	for i := range l.requests {
		if l.requests[i].ID == req.ID {
			l.requests[i] = toLeaveRequestDTO(*req)
			return
		}
	}
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (l *scenarioLoader) smallTeam() error {
	if err := l.requireTypes("Annual Leave"); err != nil {
		return err
	}
	mgr, err := l.staff("Maria Lopez", "manager", "Engineering", nil)
	if err != nil {
		return err
	}
	alice, err := l.staff("Alice Johnson", "employee", "Engineering", mgr)
	if err != nil {
		return err
	}
	bob, err := l.staff("Bob Smith", "employee", "Engineering", mgr)
	if err != nil {
		return err
	}

	vacation, err := l.submit(alice, "Annual Leave", 0, 3, "Long weekend away")
	if err != nil {
		return err
	}
	if err := l.approve(mgr, vacation); err != nil {
		return err
	}

	_, err = l.submit(bob, "Annual Leave", 1, 5, "Family visit")
	return err
}

func (l *scenarioLoader) multiDepartment() error {
	if err := l.requireTypes("Annual Leave", "Sick Leave", "Personal Leave"); err != nil {
		return err
	}
	eng, err := l.staff("Grace Hopper", "manager", "Engineering", nil)
	if err != nil {
		return err
	}
	sales, err := l.staff("Don Draper", "manager", "Sales", nil)
	if err != nil {
		return err
	}

	dev1, err := l.staff("Linus Park", "employee", "Engineering", eng)
	if err != nil {
		return err
	}
	dev2, err := l.staff("Ada Byron", "employee", "Engineering", eng)
	if err != nil {
		return err
	}
	rep1, err := l.staff("Peggy Olson", "employee", "Sales", sales)
	if err != nil {
		return err
	}
	rep2, err := l.staff("Ken Cosgrove", "employee", "Sales", sales)
	if err != nil {
		return err
	}

	approved, err := l.submit(dev1, "Annual Leave", 0, 5, "Conference week")
	if err != nil {
		return err
	}
	if err := l.approve(eng, approved); err != nil {
		return err
	}

	if _, err := l.submit(dev2, "Sick Leave", 0, 2, "Medical appointment"); err != nil {
		return err
	}

	rejected, err := l.submit(rep1, "Annual Leave", 2, 5, "Trip abroad")
	if err != nil {
		return err
	}
	if err := l.reject(sales, rejected, "Quarter-end close, please pick another week"); err != nil {
		return err
	}

	_, err = l.submit(rep2, "Personal Leave", 1, 1, "Moving house")
	return err
}

func (l *scenarioLoader) balanceExhausted() error {
	if err := l.requireTypes("Personal Leave"); err != nil {
		return err
	}
	mgr, err := l.staff("Sam Carter", "manager", "Operations", nil)
	if err != nil {
		return err
	}
	emp, err := l.staff("Jordan Lee", "employee", "Operations", mgr)
	if err != nil {
		return err
	}

	week, err := l.submit(emp, "Personal Leave", 0, 5, "Personal matters")
	if err != nil {
		return err
	}
	return l.approve(mgr, week)
}
