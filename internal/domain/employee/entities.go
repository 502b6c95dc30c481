package employee

import (
	"strings"
	"time"

	"kasbon-backend/internal/domain/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errs.New(errs.ErrReference, "employee not found")
	ErrHasLoans = errs.New(errs.ErrConflict, "employee still has loans")
)

type Employee struct {
	ID         uint64          `gorm:"primaryKey;column:id" json:"-"`
	EmployeeID string          `gorm:"size:32;uniqueIndex:ux_employees_employee_id" json:"employee_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Position   string          `gorm:"size:255;not null" json:"position"`
	Salary     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"salary"`
	JoinDate   time.Time       `gorm:"not null" json:"join_date"`
	Phone      string          `gorm:"size:32;not null" json:"phone"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }

// Validate checks the descriptive fields; the id is assigned by the caller.
func (e *Employee) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return errs.Invalid("name", "is required")
	case strings.TrimSpace(e.Position) == "":
		return errs.Invalid("position", "is required")
	case strings.TrimSpace(e.Phone) == "":
		return errs.Invalid("phone", "is required")
	case e.Salary.IsNegative():
		return errs.Invalid("salary", "must not be negative")
	case e.JoinDate.IsZero():
		return errs.Invalid("join_date", "is required")
	}
	return nil
}
