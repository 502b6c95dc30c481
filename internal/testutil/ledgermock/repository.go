package ledgermock

import (
	"context"

	"kasbon-backend/internal/domain/ledger"
)

var _ ledger.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies ledger.Repository.
type Repo struct {
	CreateFn       func(ctx context.Context, t *ledger.Transaction) error
	ListByLoanIDFn func(ctx context.Context, loanID string) ([]ledger.Transaction, error)
	ListFn         func(ctx context.Context) ([]ledger.Transaction, error)
}

func (m *Repo) Create(ctx context.Context, t *ledger.Transaction) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]ledger.Transaction, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]ledger.Transaction, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}
