package uowmock

import (
	"context"
	"errors"
	"testing"

	"kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/domain/uow"
	"kasbon-backend/internal/testutil/ledgermock"
	"kasbon-backend/internal/testutil/loanmock"
)

func TestUoW_UnsetFunctionsAreUnimplemented(t *testing.T) {
	m := New()
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(context.Background(), "ln", func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx: want errUnimplemented, got %v", err)
	}
}

func TestUoW_ForwardsLoanAndErrors(t *testing.T) {
	repos := uow.Repos{Loans: &loanmock.Repo{}, Transactions: &ledgermock.Repo{}}
	locked := &loan.Loan{LoanID: "ln-7"}
	rollback := errors.New("rollback")

	m := New().WithWithinLoanTx(func(_ context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
		if loanID != locked.LoanID {
			t.Fatalf("loanID = %q", loanID)
		}
		return fn(repos, locked)
	})
	err := m.WithinLoanTx(context.Background(), "ln-7", func(r uow.Repos, l *loan.Loan) error {
		if r.Transactions != repos.Transactions || l != locked {
			t.Fatalf("repos or loan not forwarded")
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("want %v, got %v", rollback, err)
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}

func TestPassthrough_LoadsLoanAndForwardsRepos(t *testing.T) {
	ctx := context.Background()
	want := &loan.Loan{LoanID: "LN-9"}
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*loan.Loan, error) {
			if loanID != "LN-9" {
				return nil, errors.New("unknown")
			}
			return want, nil
		},
	}
	repos := uow.Repos{Loans: loans}
	m := Passthrough(repos)

	if err := m.WithinTx(ctx, func(r uow.Repos) error {
		if r.Loans != loans {
			t.Fatalf("WithinTx: repos not forwarded")
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	var got *loan.Loan
	if err := m.WithinLoanTx(ctx, "LN-9", func(_ uow.Repos, l *loan.Loan) error {
		got = l
		return nil
	}); err != nil || got != want {
		t.Fatalf("WithinLoanTx: got=%v err=%v", got, err)
	}
	if err := m.WithinLoanTx(ctx, "nope", func(uow.Repos, *loan.Loan) error {
		t.Fatal("fn must not run for a missing loan")
		return nil
	}); err == nil {
		t.Fatal("expected lookup error")
	}
}
