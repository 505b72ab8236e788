/*
policy.go - Role-based authorization for lifecycle and admin operations

PURPOSE:
  Decides what an actor may see and do before any data is touched.

CAPABILITIES:
  employee: submit, view own requests and balance
  manager:  employee + view/review requests where they are the captured
            manager
  admin:    everything, regardless of manager linkage

REVIEW SCOPE:
  Approve and reject do not fail with Forbidden for a manager acting on
  another team's request. The scope is folded into the store lookup, so
  "not yours", "does not exist" and "already processed" all surface as
  NotFound.
*/
package leave

// Capability is a single permission checked by Authorize.
type Capability int

const (
	CapSubmit Capability = iota
	CapViewOwn
	CapViewTeam
	CapReviewTeam
	CapViewAll
	CapReviewAll
	CapManageUsers
	CapManageBalances
	CapViewStatistics
)

func (c Capability) String() string {
	switch c {
	case CapSubmit:
		return "submit"
	case CapViewOwn:
		return "view_own"
	case CapViewTeam:
		return "view_team"
	case CapReviewTeam:
		return "review_team"
	case CapViewAll:
		return "view_all"
	case CapReviewAll:
		return "review_all"
	case CapManageUsers:
		return "manage_users"
	case CapManageBalances:
		return "manage_balances"
	case CapViewStatistics:
		return "view_statistics"
	}
	return "unknown"
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	switch r {
	case RoleEmployee:
		return c == CapSubmit || c == CapViewOwn
	case RoleManager:
		switch c {
		case CapSubmit, CapViewOwn, CapViewTeam, CapReviewTeam:
			return true
		}
		return false
	case RoleAdmin:
		return true
	}
	return false
}

// Authorize returns a Forbidden error when the actor lacks the capability.
func Authorize(actor Actor, c Capability) error {
	if !actor.Role.Can(c) {
		return forbidden("Not authorized to access this route")
	}
	return nil
}

// ReviewScope restricts which pending requests an actor may decide.
// A nil ManagerID means any request.
type ReviewScope struct {
	ManagerID *int64
}

// Unrestricted reports whether the scope covers every request.
func (s ReviewScope) Unrestricted() bool { return s.ManagerID == nil }

// ReviewScopeFor returns the approve/reject scope for an actor. Holders of
// CapReviewAll decide any request; CapReviewTeam limits them to requests
// that captured them as manager.
func ReviewScopeFor(actor Actor) (ReviewScope, error) {
	if actor.Role.Can(CapReviewAll) {
		return ReviewScope{}, nil
	}
	if err := Authorize(actor, CapReviewTeam); err != nil {
		return ReviewScope{}, err
	}
	id := actor.UserID
	return ReviewScope{ManagerID: &id}, nil
}
