package loanmock

import (
	"context"

	domain "kasbon-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to success, reads default to context.Canceled.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListFn                 func(ctx context.Context) ([]domain.Loan, error)
	ListByEmployeeIDFn     func(ctx context.Context, employeeID string) ([]domain.Loan, error)
	CountByEmployeeIDFn    func(ctx context.Context, employeeID string) (int64, error)
	UpdateBalanceFn        func(ctx context.Context, l *domain.Loan, expectedVersion int64) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByEmployeeID(ctx context.Context, employeeID string) ([]domain.Loan, error) {
	if m.ListByEmployeeIDFn != nil {
		return m.ListByEmployeeIDFn(ctx, employeeID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountByEmployeeID(ctx context.Context, employeeID string) (int64, error) {
	if m.CountByEmployeeIDFn != nil {
		return m.CountByEmployeeIDFn(ctx, employeeID)
	}
	return 0, context.Canceled
}

func (m *Repo) UpdateBalance(ctx context.Context, l *domain.Loan, expectedVersion int64) error {
	if m.UpdateBalanceFn != nil {
		return m.UpdateBalanceFn(ctx, l, expectedVersion)
	}
	l.Version = expectedVersion + 1
	return nil
}
