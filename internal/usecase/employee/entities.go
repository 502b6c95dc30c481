package employee

import (
	"time"

	domain "kasbon-backend/internal/domain/employee"

	"github.com/shopspring/decimal"
)

type AddInput struct {
	Name     string          `json:"name"`
	Position string          `json:"position"`
	Salary   decimal.Decimal `json:"salary"`
	JoinDate time.Time       `json:"join_date"`
	Phone    string          `json:"phone"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	Name     *string          `json:"name,omitempty"`
	Position *string          `json:"position,omitempty"`
	Salary   *decimal.Decimal `json:"salary,omitempty"`
	JoinDate *time.Time       `json:"join_date,omitempty"`
	Phone    *string          `json:"phone,omitempty"`
}

type EmployeeDTO struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Position   string          `json:"position"`
	Salary     decimal.Decimal `json:"salary"`
	JoinDate   time.Time       `json:"join_date"`
	Phone      string          `json:"phone"`
}

// OverviewDTO is an employee with their current debt.
type OverviewDTO struct {
	EmployeeDTO
	Debt        decimal.Decimal `json:"debt"`
	ActiveLoans int             `json:"active_loans"`
	TotalLoans  int             `json:"total_loans"`
}

type AdviceDTO struct {
	EmployeeID string `json:"employee_id"`
	Advice     string `json:"advice"`
}

func toDTO(e domain.Employee) EmployeeDTO {
	return EmployeeDTO{
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		Position:   e.Position,
		Salary:     e.Salary,
		JoinDate:   e.JoinDate,
		Phone:      e.Phone,
	}
}
