package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kasbon-backend/internal/domain/errs"
	"kasbon-backend/internal/domain/ledger"
	"kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/domain/report"
	"kasbon-backend/internal/domain/uow"
	"kasbon-backend/internal/logger"
	"kasbon-backend/pkg/keylock"

	"gorm.io/gorm"
)

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Report struct {
	CheckedLoans int              `json:"checked_loans"`
	Divergences  []report.Finding `json:"divergences"`
	Repaired     []string         `json:"repaired"`
	CheckedAt    time.Time        `json:"checked_at"`
}

type Usecase struct {
	loans loan.Repository
	txs   ledger.Repository
	uow   uow.UnitOfWork
	locks *keylock.Locker
	cache Invalidator
	now   func() time.Time
	log   *slog.Logger
}

// NewUsecase shares locks with the loan usecase so repair never interleaves
// with a repayment on the same loan.
func NewUsecase(loans loan.Repository, txs ledger.Repository, tx uow.UnitOfWork, locks *keylock.Locker, cache Invalidator) *Usecase {
	if locks == nil {
		locks = keylock.New()
	}
	return &Usecase{
		loans: loans,
		txs:   txs,
		uow:   tx,
		locks: locks,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logger.WithService("reconcile"),
	}
}

// Check folds every loan's transactions and lists each divergence.
func (u *Usecase) Check(ctx context.Context) (*Report, error) {
	loans, err := u.loans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	txs, err := u.txs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	rep := &Report{CheckedLoans: len(loans), Divergences: []report.Finding{}, Repaired: []string{}, CheckedAt: u.now()}
	for _, l := range loans {
		for _, f := range report.Audit(l, txs) {
			u.log.Error("ledger divergence",
				"loan_id", f.LoanID,
				"code", f.Code,
				"stored", f.Stored.String(),
				"expected", f.Expected.String(),
			)
			rep.Divergences = append(rep.Divergences, f)
		}
	}
	return rep, nil
}

// Repair resets the loan's balance and status to what its log says.
// Disbursement findings need a human and are left alone.
func (u *Usecase) Repair(ctx context.Context, loanID string) (bool, error) {
	unlock := u.locks.Lock(loanID)
	defer unlock()

	repaired := false
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		txs, err := r.Transactions.ListByLoanID(ctx, loanID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		derived := report.DeriveRemaining(*l, txs)
		if derived.IsNegative() || derived.GreaterThan(l.Amount) {
			return errs.Inconsistent(fmt.Sprintf("loan %s log implies remaining %s outside [0, %s]", loanID, derived, l.Amount))
		}

		status := l.Status
		switch {
		case derived.IsZero() && l.Status == loan.StatusActive:
			status = loan.StatusPaid
		case derived.IsPositive() && l.Status == loan.StatusPaid:
			status = loan.StatusActive
		}
		if derived.Equal(l.RemainingAmount) && status == l.Status {
			return nil
		}

		u.log.Warn("repairing loan from log",
			"loan_id", loanID,
			"stored_remaining", l.RemainingAmount.String(),
			"derived_remaining", derived.String(),
			"stored_status", l.Status,
			"status", status,
		)
		expected := l.Version
		l.RemainingAmount = derived
		l.Status = status
		if err := l.CheckInvariants(); err != nil {
			return err
		}
		if err := r.Loans.UpdateBalance(ctx, l, expected); err != nil {
			return err
		}
		repaired = true
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, loan.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if repaired && u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			u.log.Warn("dashboard cache invalidation failed", "error", err)
		}
	}
	return repaired, nil
}

// Run checks every loan and, when repair is set, repairs the divergent ones.
func (u *Usecase) Run(ctx context.Context, repair bool) (*Report, error) {
	rep, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	if repair {
		for _, id := range divergentLoans(rep.Divergences) {
			ok, err := u.Repair(ctx, id)
			if err != nil {
				u.log.Error("repair failed", "loan_id", id, "error", err)
				continue
			}
			if ok {
				rep.Repaired = append(rep.Repaired, id)
			}
		}
	}
	u.log.Info("reconciliation finished",
		"checked", rep.CheckedLoans,
		"divergences", len(rep.Divergences),
		"repaired", len(rep.Repaired),
	)
	return rep, nil
}

func divergentLoans(fs []report.Finding) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range fs {
		if _, ok := seen[f.LoanID]; ok {
			continue
		}
		seen[f.LoanID] = struct{}{}
		out = append(out, f.LoanID)
	}
	return out
}
