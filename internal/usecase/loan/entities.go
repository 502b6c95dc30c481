package loan

import (
	"time"

	"kasbon-backend/internal/domain/ledger"
	domain "kasbon-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type IssueInput struct {
	EmployeeID  string          `json:"employee_id"`
	Amount      decimal.Decimal `json:"amount"`
	TermMonths  int             `json:"term_months"`
	Reason      string          `json:"reason"`
	RequestDate *time.Time      `json:"request_date,omitempty"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	// WithAdvisory asks the advisory service for an opinion before issuing.
	WithAdvisory bool `json:"with_advisory"`
}

type RepayInput struct {
	LoanID string          `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
	Date   *time.Time      `json:"date,omitempty"`
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	EmployeeID      string          `json:"employee_id"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	TermMonths      int             `json:"term_months"`
	RequestDate     time.Time       `json:"request_date"`
	StartDate       time.Time       `json:"start_date"`
	AIAnalysis      *string         `json:"ai_analysis,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TransactionDTO struct {
	TransactionID string          `json:"transaction_id"`
	LoanID        string          `json:"loan_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"`
}

// RepaymentDTO is the appended transaction plus the loan as it stands after it.
type RepaymentDTO struct {
	Transaction TransactionDTO `json:"transaction"`
	Loan        LoanDTO        `json:"loan"`
}

func toLoanDTO(l domain.Loan) LoanDTO {
	return LoanDTO{
		LoanID:          l.LoanID,
		EmployeeID:      l.EmployeeID,
		Amount:          l.Amount,
		RemainingAmount: l.RemainingAmount,
		Reason:          l.Reason,
		Status:          string(l.Status),
		TermMonths:      l.TermMonths,
		RequestDate:     l.RequestDate,
		StartDate:       l.StartDate,
		AIAnalysis:      l.AIAnalysis,
		CreatedAt:       l.CreatedAt,
	}
}

func toTransactionDTO(t ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		TransactionID: t.TransactionID,
		LoanID:        t.LoanID,
		Amount:        t.Amount,
		Date:          t.Date,
		Type:          string(t.Type),
	}
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionDTO(t))
	}
	return out
}
