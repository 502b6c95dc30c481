package uow

import (
	"context"

	"kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/ledger"
	"kasbon-backend/internal/domain/loan"
)

// Repos are bound to the same storage transaction.
type Repos struct {
	Employees    employee.Repository
	Loans        loan.Repository
	Transactions ledger.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row before calling fn. A missing loan
	// surfaces as the repository's not-found error.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
