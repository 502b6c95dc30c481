package loan

import (
	"fmt"
	"strings"
	"time"

	"kasbon-backend/internal/domain/errs"
	"kasbon-backend/internal/domain/ledger"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPaid     Status = "PAID"
	StatusRejected Status = "REJECTED"
	StatusPending  Status = "PENDING"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaid, StatusRejected, StatusPending:
		return true
	}
	return false
}

const (
	MinTermMonths = 1
	MaxTermMonths = 24
)

var (
	ErrNotFound         = errs.New(errs.ErrReference, "loan not found")
	ErrAlreadyPaid      = &errs.Error{Kind: errs.ErrValidation, Field: "amount", Msg: "exceeds remaining amount, loan is already paid"}
	ErrExceedsRemaining = &errs.Error{Kind: errs.ErrValidation, Field: "amount", Msg: "exceeds remaining amount"}
	ErrNotActive        = errs.New(errs.ErrValidation, "loan is not active")
	ErrConcurrentUpdate = errs.New(errs.ErrConflict, "loan was modified concurrently")
)

type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	EmployeeID      string          `gorm:"size:32;not null;index:idx_loans_employee_id" json:"employee_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	Reason          string          `gorm:"type:text" json:"reason"`
	Status          Status          `gorm:"size:16;not null;index:idx_loans_status" json:"status"`
	TermMonths      int             `gorm:"not null" json:"term_months"`
	RequestDate     time.Time       `gorm:"not null" json:"request_date"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	AIAnalysis      *string         `gorm:"type:text" json:"ai_analysis,omitempty"`
	Version         int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// ValidateTerms checks the issuance inputs shared by every loan.
func ValidateTerms(amount decimal.Decimal, termMonths int, reason string) error {
	if err := ledger.CheckAmount(amount); err != nil {
		return err
	}
	if termMonths < MinTermMonths || termMonths > MaxTermMonths {
		return errs.Invalid("term_months", fmt.Sprintf("must be between %d and %d", MinTermMonths, MaxTermMonths))
	}
	if strings.TrimSpace(reason) == "" {
		return errs.Invalid("reason", "is required")
	}
	return nil
}

type NewParams struct {
	LoanID      string
	EmployeeID  string
	Amount      decimal.Decimal
	TermMonths  int
	Reason      string
	RequestDate time.Time
	StartDate   time.Time
	AIAnalysis  *string
}

// New returns an ACTIVE loan whose remaining amount equals its principal.
func New(p NewParams) (*Loan, error) {
	if strings.TrimSpace(p.EmployeeID) == "" {
		return nil, errs.Invalid("employee_id", "is required")
	}
	if err := ValidateTerms(p.Amount, p.TermMonths, p.Reason); err != nil {
		return nil, err
	}
	return &Loan{
		LoanID:          p.LoanID,
		EmployeeID:      p.EmployeeID,
		Amount:          p.Amount,
		RemainingAmount: p.Amount,
		Reason:          strings.TrimSpace(p.Reason),
		Status:          StatusActive,
		TermMonths:      p.TermMonths,
		RequestDate:     p.RequestDate.UTC(),
		StartDate:       p.StartDate.UTC(),
		AIAnalysis:      p.AIAnalysis,
	}, nil
}

// ApplyRepayment moves the balance down by amount. The only status change it
// makes is ACTIVE -> PAID, when the balance reaches exactly zero.
func (l *Loan) ApplyRepayment(amount decimal.Decimal) error {
	if err := ledger.CheckAmount(amount); err != nil {
		return err
	}
	if l.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	if amount.GreaterThan(l.RemainingAmount) {
		return ErrExceedsRemaining
	}
	if l.Status != StatusActive {
		return ErrNotActive
	}
	l.RemainingAmount = l.RemainingAmount.Sub(amount)
	if l.RemainingAmount.IsZero() {
		l.Status = StatusPaid
	}
	return nil
}

// CheckInvariants verifies the fields of a single loan without looking at the log.
func (l *Loan) CheckInvariants() error {
	if !l.Status.Valid() {
		return errs.Inconsistent(fmt.Sprintf("loan %s has unknown status %q", l.LoanID, l.Status))
	}
	if l.RemainingAmount.IsNegative() || l.RemainingAmount.GreaterThan(l.Amount) {
		return errs.Inconsistent(fmt.Sprintf("loan %s remaining %s outside [0, %s]", l.LoanID, l.RemainingAmount, l.Amount))
	}
	switch l.Status {
	case StatusPaid:
		if !l.RemainingAmount.IsZero() {
			return errs.Inconsistent(fmt.Sprintf("loan %s is PAID with remaining %s", l.LoanID, l.RemainingAmount))
		}
	case StatusActive:
		if l.RemainingAmount.IsZero() {
			return errs.Inconsistent(fmt.Sprintf("loan %s is ACTIVE with nothing remaining", l.LoanID))
		}
	}
	return nil
}
