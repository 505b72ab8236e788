/*
accounts.go - Registration, login and user administration

PURPOSE:
  Creates accounts together with their opening balances, verifies
  credentials, and lets admins manage roles and manager links.

ATOMICITY:
  A user row and its balance rows are written in one transaction.
  A duplicate email leaves no trace.

CREDENTIALS:
  Unknown email and wrong password return the same error, and an unknown
  email still pays for a bcrypt comparison.
*/
package leave

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-service/auth"
)

// =============================================================================
// ACCOUNT CREATION
// =============================================================================

// NewAccount holds the fields for creating a user.
type NewAccount struct {
	Name       string
	Email      string
	Password   string
	Department string
	Role       string
	ManagerID  *int64
}

// Register creates a self-service employee account.
func (s *Service) Register(ctx context.Context, in NewAccount) (*User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, validation("Please provide name, email and password")
	}
	in.ManagerID = nil
	return s.createAccount(ctx, in, RoleEmployee)
}

// CreateStaff creates an account with any role. Admin only.
func (s *Service) CreateStaff(ctx context.Context, actor Actor, in NewAccount) (*User, error) {
	if err := Authorize(actor, CapManageUsers); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" ||
		in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, validation("Please provide name, email, password, and role")
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.ManagerID != nil {
		if err := s.checkManager(ctx, 0, *in.ManagerID); err != nil {
			return nil, err
		}
	}

	u, err := s.createAccount(ctx, in, role)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"user_id":    u.ID,
		"role":       u.Role,
		"created_by": actor.UserID,
	}).Info("staff account created")
	return u, nil
}

// BootstrapAdmin creates an admin account without an acting admin. It is
// meant for first-run setup tools, not for the HTTP API.
func (s *Service) BootstrapAdmin(ctx context.Context, in NewAccount) (*User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, validation("Please provide name, email and password")
	}
	return s.createAccount(ctx, in, RoleAdmin)
}

func (s *Service) createAccount(ctx context.Context, in NewAccount, role Role) (*User, error) {
	email := normalizeEmail(in.Email)

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   optionalString(in.Department),
		ManagerID:    in.ManagerID,
		CreatedAt:    s.Now().UTC(),
	}

	err = s.Store.WithTx(ctx, func(tx Store) error {
		existing, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict("User already exists")
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			if errors.Is(err, ErrConflict) {
				return conflict("User already exists")
			}
			return err
		}
		return NewLedger(tx).Initialize(ctx, u.ID, s.currentYear())
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login verifies credentials and returns the user.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, validation("Please provide email and password")
	}

	u, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		auth.CompareDummy(password)
		return nil, unauthenticated("Invalid credentials")
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, unauthenticated("Invalid credentials")
	}
	return u, nil
}

// ResolveActor turns a token subject into an Actor using the stored role,
// so role changes apply to tokens already issued.
func (s *Service) ResolveActor(ctx context.Context, userID int64) (Actor, error) {
	u, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	if u == nil {
		return Actor{}, unauthenticated("Not authorized to access this route")
	}
	return Actor{UserID: u.ID, Role: u.Role}, nil
}

// Me returns the actor's own account.
func (s *Service) Me(ctx context.Context, actor Actor) (*User, error) {
	u, err := s.Store.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	return u, nil
}

// =============================================================================
// USER ADMINISTRATION
// =============================================================================

// ListUsers returns every account, newest first.
func (s *Service) ListUsers(ctx context.Context, actor Actor) ([]User, error) {
	if err := Authorize(actor, CapManageUsers); err != nil {
		return nil, err
	}
	return s.Store.ListUsers(ctx)
}

// UpdateRole changes a user's role.
func (s *Service) UpdateRole(ctx context.Context, actor Actor, userID int64, role string) (*User, error) {
	if err := Authorize(actor, CapManageUsers); err != nil {
		return nil, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	ok, err := s.Store.UpdateUserRole(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("User not found")
	}

	s.Logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"role":       r,
		"changed_by": actor.UserID,
	}).Info("user role changed")

	return s.Store.GetUser(ctx, userID)
}

// AssignManager sets or clears a user's live manager. Requests already
// submitted keep their snapshot.
func (s *Service) AssignManager(ctx context.Context, actor Actor, userID int64, managerID *int64) (*User, error) {
	if err := Authorize(actor, CapManageUsers); err != nil {
		return nil, err
	}
	if managerID != nil {
		if err := s.checkManager(ctx, userID, *managerID); err != nil {
			return nil, err
		}
	}

	ok, err := s.Store.UpdateUserManager(ctx, userID, managerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("User not found")
	}

	s.Logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"manager_id": managerID,
		"changed_by": actor.UserID,
	}).Info("user manager changed")

	return s.Store.GetUser(ctx, userID)
}

func (s *Service) checkManager(ctx context.Context, userID, managerID int64) error {
	if managerID == userID {
		return validation("A user cannot manage themself")
	}
	m, err := s.Store.GetUser(ctx, managerID)
	if err != nil {
		return err
	}
	if m == nil {
		return validation("Manager not found")
	}
	switch m.Role {
	case RoleManager, RoleAdmin:
		return nil
	case RoleEmployee:
		return validation("Manager must have the manager or admin role")
	}
	return validation("Manager has an unknown role")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
