package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// UserCounts is the number of accounts per role.
type UserCounts struct {
	Employees int
	Managers  int
	Admins    int
	Total     int
}

// RequestCounts is the number of requests per status.
type RequestCounts struct {
	Pending  int
	Approved int
	Rejected int
	Total    int
}

// TypeUsage sums every balance of one leave type for a year.
type TypeUsage struct {
	LeaveTypeID   int64
	LeaveTypeName string
	TotalDays     int
	UsedDays      int
	RemainingDays int
}

// UtilizationPercent is used/total as a percentage rounded to two places.
func (u TypeUsage) UtilizationPercent() decimal.Decimal {
	if u.TotalDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(u.UsedDays)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(u.TotalDays))).
		Round(2)
}

// Statistics is the admin dashboard rollup.
type Statistics struct {
	Users       UserCounts
	Requests    RequestCounts
	Departments int
	Year        int
	Usage       []TypeUsage
}

// Statistics aggregates users, requests, departments and current-year
// balance usage. Read-only.
func (s *Service) Statistics(ctx context.Context, actor Actor) (*Statistics, error) {
	if err := Authorize(actor, CapViewStatistics); err != nil {
		return nil, err
	}

	users, err := s.Store.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.Store.CountRequestsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.Store.CountDepartments(ctx)
	if err != nil {
		return nil, err
	}

	year := s.currentYear()
	usage, err := s.Store.SumBalancesByType(ctx, year)
	if err != nil {
		return nil, err
	}

	return &Statistics{
		Users:       users,
		Requests:    requests,
		Departments: departments,
		Year:        year,
		Usage:       usage,
	}, nil
}
