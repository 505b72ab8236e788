/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  Defines JSON request/response shapes for the API. DTOs decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO:       Response objects (server → client)
  - *Request:   Request bodies (client → server)

ENVELOPE:
  success: {"success": true, "data": ..., "count"?: n, "message"?: "..."}
  failure: {"success": false, "message": "...", "error"?: "..."}

JSON TAGS:
  snake_case throughout. Dates are YYYY-MM-DD strings, timestamps
  RFC3339. Password hashes never leave the server.

SEE ALSO:
  - leave/types.go: Domain types these map from
  - handlers.go: Uses DTOs for request/response
*/
package api

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/warp/leave-service/leave"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope. Error carries the underlying
// cause outside production only.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// HealthDTO is returned by GET /api/health.
type HealthDTO struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database,omitempty"`
}

// =============================================================================
// ID VALUES
// =============================================================================

// ID accepts a JSON number or a numeric string, since form-driven clients
// often send select values as strings.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", string(b))
	}
	*id = ID(n)
	return nil
}

// =============================================================================
// AUTH
// =============================================================================

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department *string   `json:"department"`
	ManagerID  *int64    `json:"manager_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type AuthDTO struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

func toUserDTO(u leave.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Department: u.Department,
		ManagerID:  u.ManagerID,
		CreatedAt:  u.CreatedAt,
	}
}

func toUserDTOs(users []leave.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out
}

// =============================================================================
// LEAVES
// =============================================================================

type LeaveTypeDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DaysPerYear int    `json:"days_per_year"`
}

type SubmitLeaveRequest struct {
	LeaveTypeID ID     `json:"leave_type_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

type BalanceDTO struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	LeaveTypeID   int64  `json:"leave_type_id"`
	LeaveTypeName string `json:"leave_type_name"`
	Year          int    `json:"year"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	RemainingDays int    `json:"remaining_days"`
}

// LeaveRequestDTO is a request, with display names when listed.
type LeaveRequestDTO struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	LeaveTypeID     int64      `json:"leave_type_id"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	WorkingDays     int        `json:"working_days"`
	Reason          string     `json:"reason"`
	ManagerID       *int64     `json:"manager_id"`
	Status          string     `json:"status"`
	ApprovedBy      *int64     `json:"approved_by"`
	ApprovedDate    *time.Time `json:"approved_date"`
	RejectedBy      *int64     `json:"rejected_by"`
	RejectedDate    *time.Time `json:"rejected_date"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`

	LeaveTypeName string  `json:"leave_type_name,omitempty"`
	UserName      string  `json:"user_name,omitempty"`
	Department    *string `json:"department,omitempty"`
	ManagerName   *string `json:"manager_name,omitempty"`
}

func toLeaveTypeDTOs(types []leave.LeaveType) []LeaveTypeDTO {
	out := make([]LeaveTypeDTO, 0, len(types))
	for _, lt := range types {
		out = append(out, LeaveTypeDTO{ID: lt.ID, Name: lt.Name, DaysPerYear: lt.DaysPerYear})
	}
	return out
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		ID:            b.ID,
		UserID:        b.UserID,
		LeaveTypeID:   b.LeaveTypeID,
		LeaveTypeName: b.LeaveTypeName,
		Year:          b.Year,
		TotalDays:     b.TotalDays,
		UsedDays:      b.UsedDays,
		RemainingDays: b.RemainingDays,
	}
}

func toBalanceDTOs(balances []leave.Balance) []BalanceDTO {
	out := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		out = append(out, toBalanceDTO(b))
	}
	return out
}

func toLeaveRequestDTO(r leave.LeaveRequest) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:              r.ID,
		UserID:          r.UserID,
		LeaveTypeID:     r.LeaveTypeID,
		StartDate:       r.StartDate.Format(leave.DateLayout),
		EndDate:         r.EndDate.Format(leave.DateLayout),
		WorkingDays:     r.WorkingDays,
		Reason:          r.Reason,
		ManagerID:       r.ManagerID,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		ApprovedDate:    r.ApprovedDate,
		RejectedBy:      r.RejectedBy,
		RejectedDate:    r.RejectedDate,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
	}
}

func toLeaveRequestDTOs(views []leave.RequestView) []LeaveRequestDTO {
	out := make([]LeaveRequestDTO, 0, len(views))
	for _, v := range views {
		dto := toLeaveRequestDTO(v.LeaveRequest)
		dto.LeaveTypeName = v.LeaveTypeName
		dto.UserName = v.UserName
		dto.Department = v.Department
		dto.ManagerName = v.ManagerName
		out = append(out, dto)
	}
	return out
}

// =============================================================================
// ADMIN
// =============================================================================

type CreateStaffRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	ManagerID  *ID    `json:"manager_id"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// AssignManagerRequest clears the manager when manager_id is null.
type AssignManagerRequest struct {
	ManagerID *ID `json:"manager_id"`
}

type AdjustBalanceRequest struct {
	LeaveTypeID   ID  `json:"leave_type_id"`
	TotalDays     int `json:"total_days"`
	UsedDays      int `json:"used_days"`
	RemainingDays int `json:"remaining_days"`
}

type UserCountsDTO struct {
	Employees int `json:"employees"`
	Managers  int `json:"managers"`
	Admins    int `json:"admins"`
	Total     int `json:"total"`
}

type RequestCountsDTO struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

type LeaveUsageDTO struct {
	LeaveTypeID        int64   `json:"leave_type_id"`
	LeaveTypeName      string  `json:"leave_type_name"`
	TotalDays          int     `json:"total_days"`
	UsedDays           int     `json:"used_days"`
	RemainingDays      int     `json:"remaining_days"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

type StatisticsDTO struct {
	Users       UserCountsDTO    `json:"users"`
	Requests    RequestCountsDTO `json:"requests"`
	Departments int              `json:"departments"`
	Year        int              `json:"year"`
	LeaveUsage  []LeaveUsageDTO  `json:"leave_usage"`
}

func toStatisticsDTO(s *leave.Statistics) StatisticsDTO {
	usage := make([]LeaveUsageDTO, 0, len(s.Usage))
	for _, u := range s.Usage {
		usage = append(usage, LeaveUsageDTO{
			LeaveTypeID:        u.LeaveTypeID,
			LeaveTypeName:      u.LeaveTypeName,
			TotalDays:          u.TotalDays,
			UsedDays:           u.UsedDays,
			RemainingDays:      u.RemainingDays,
			UtilizationPercent: u.UtilizationPercent().InexactFloat64(),
		})
	}
	return StatisticsDTO{
		Users: UserCountsDTO{
			Employees: s.Users.Employees,
			Managers:  s.Users.Managers,
			Admins:    s.Users.Admins,
			Total:     s.Users.Total,
		},
		Requests: RequestCountsDTO{
			Pending:  s.Requests.Pending,
			Approved: s.Requests.Approved,
			Rejected: s.Requests.Rejected,
			Total:    s.Requests.Total,
		},
		Departments: s.Departments,
		Year:        s.Year,
		LeaveUsage:  usage,
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// DemoAccountDTO is a login created by a scenario.
type DemoAccountDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type ScenarioResultDTO struct {
	Scenario ScenarioDTO       `json:"scenario"`
	Accounts []DemoAccountDTO  `json:"accounts"`
	Requests []LeaveRequestDTO `json:"requests"`
}

// parseID parses a path parameter.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, leave.NewError(leave.ErrValidation, "Invalid input value", err)
	}
	return id, nil
}
