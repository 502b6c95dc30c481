package loan

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	List(ctx context.Context) ([]Loan, error)
	ListByEmployeeID(ctx context.Context, employeeID string) ([]Loan, error)
	CountByEmployeeID(ctx context.Context, employeeID string) (int64, error)
	// UpdateBalance persists RemainingAmount and Status only when the stored
	// version still equals expectedVersion, then bumps l.Version.
	UpdateBalance(ctx context.Context, l *Loan, expectedVersion int64) error
}
