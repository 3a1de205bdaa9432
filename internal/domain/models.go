package domain

import (
	"encoding/json"
	"time"
)

type Role struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Permission struct {
	Key         string    `json:"key"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the authenticated caller of a single request. It is rebuilt from
// the bearer token on every request and never stored.
type Principal struct {
	Subject     string   `json:"subject"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Contract is an employment contract. BasicSalary and Allowances are restricted
// fields: a nil value means the viewer is not allowed to see them and the JSON
// encoding omits the key entirely.
type Contract struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	Position     string          `json:"position"`
	ContractType string          `json:"contractType"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      *time.Time      `json:"endDate,omitempty"`
	Status       string          `json:"status"`
	BasicSalary  *float64        `json:"basicSalary,omitempty"`
	Allowances   json.RawMessage `json:"allowancesJson,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

const (
	ContractStatusActive     = "active"
	ContractStatusTerminated = "terminated"
)

type ContractFilter struct {
	// OwnerID narrows the result to contracts of a single employee when set.
	OwnerID string
	Status  string
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveRequest struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employeeId"`
	StartDate  time.Time   `json:"startDate"`
	EndDate    time.Time   `json:"endDate"`
	Reason     string      `json:"reason"`
	Status     LeaveStatus `json:"status"`
	DecidedBy  string      `json:"decidedBy,omitempty"`
	DecidedAt  *time.Time  `json:"decidedAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type LeaveFilter struct {
	OwnerID string
	Status  LeaveStatus
}

type PayrollSnapshot struct {
	Date             time.Time      `json:"date"`
	Headcount        int            `json:"headcount"`
	TotalBasicSalary float64        `json:"totalBasicSalary"`
	ByContractType   map[string]int `json:"byContractType"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}
