// Package events describes the ledger notifications published after a
// committed write. Publishing is best effort.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeLoanIssued        = "loan.issued"
	TypeRepaymentRecorded = "loan.repayment_recorded"
	TypeLoanPaid          = "loan.paid"
)

type Event interface {
	Type() string
}

// Publisher delivers events keyed by loan id so one loan's events stay ordered.
type Publisher interface {
	Publish(ctx context.Context, key string, e Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }

type LoanIssued struct {
	EventID    string          `json:"event_id"`
	LoanID     string          `json:"loan_id"`
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (LoanIssued) Type() string { return TypeLoanIssued }

type RepaymentRecorded struct {
	EventID         string          `json:"event_id"`
	LoanID          string          `json:"loan_id"`
	EmployeeID      string          `json:"employee_id"`
	TransactionID   string          `json:"transaction_id"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func (RepaymentRecorded) Type() string { return TypeRepaymentRecorded }

type LoanPaid struct {
	EventID    string          `json:"event_id"`
	LoanID     string          `json:"loan_id"`
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (LoanPaid) Type() string { return TypeLoanPaid }

func NewEventID() string { return uuid.NewString() }
