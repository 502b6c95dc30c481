package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kasbon-backend/internal/advisory"
	"kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/ledger"
	domain "kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/domain/report"
	"kasbon-backend/internal/domain/uow"
	"kasbon-backend/internal/events"
	"kasbon-backend/internal/logger"
	"kasbon-backend/pkg/id"
	"kasbon-backend/pkg/keylock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxRepayAttempts bounds retries after a lost compare-and-swap on the loan row.
const maxRepayAttempts = 3

type Advisor interface {
	Analyze(ctx context.Context, in advisory.AnalysisInput) (string, error)
}

// Invalidator drops derived views (the dashboard cache) after a ledger write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Usecase struct {
	loans     domain.Repository
	employees employee.Repository
	txs       ledger.Repository
	uow       uow.UnitOfWork

	advisor Advisor
	cache   Invalidator
	events  events.Publisher
	locks   *keylock.Locker
	now     func() time.Time
	log     *slog.Logger
}

type Option func(*Usecase)

func WithAdvisor(a Advisor) Option { return func(u *Usecase) { u.advisor = a } }
func WithInvalidator(c Invalidator) Option { return func(u *Usecase) { u.cache = c } }
func WithPublisher(p events.Publisher) Option { return func(u *Usecase) { u.events = p } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// WithLocker shares the per-loan lock table with other writers (the reconciler).
func WithLocker(l *keylock.Locker) Option { return func(u *Usecase) { u.locks = l } }

func NewUsecase(loans domain.Repository, employees employee.Repository, txs ledger.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		loans:     loans,
		employees: employees,
		txs:       txs,
		uow:       tx,
		events:    events.NopPublisher{},
		locks:     keylock.New(),
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.WithService("loan"),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// IssueLoan creates an ACTIVE loan and its DISBURSEMENT in one transaction.
func (u *Usecase) IssueLoan(ctx context.Context, in IssueInput) (*LoanDTO, error) {
	if err := domain.ValidateTerms(in.Amount, in.TermMonths, in.Reason); err != nil {
		return nil, err
	}
	emp, err := u.employees.GetByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, employeeErr(err)
	}

	requestDate := u.now()
	if in.RequestDate != nil && !in.RequestDate.IsZero() {
		requestDate = *in.RequestDate
	}
	startDate := requestDate
	if in.StartDate != nil && !in.StartDate.IsZero() {
		startDate = *in.StartDate
	}

	var analysis *string
	if in.WithAdvisory && u.advisor != nil {
		text := u.analyze(ctx, *emp, in)
		analysis = &text
	}

	l, err := domain.New(domain.NewParams{
		LoanID:      id.NewID32(),
		EmployeeID:  emp.EmployeeID,
		Amount:      in.Amount,
		TermMonths:  in.TermMonths,
		Reason:      in.Reason,
		RequestDate: requestDate,
		StartDate:   startDate,
		AIAnalysis:  analysis,
	})
	if err != nil {
		return nil, err
	}
	// the money leaves at issuance; start date only schedules the repayments
	issuedAt := u.now()
	disb, err := ledger.NewDisbursement(id.NewID32(), l.LoanID, l.Amount, issuedAt)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		// the employee may have been deleted since the lookup above; the row
		// lock holds off a concurrent delete until the loan is committed
		if _, err := r.Employees.GetByEmployeeIDForUpdate(ctx, l.EmployeeID); err != nil {
			return employeeErr(err)
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		if err := r.Transactions.Create(ctx, disb); err != nil {
			return fmt.Errorf("create disbursement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("loan issued", "loan_id", l.LoanID, "employee_id", l.EmployeeID, "amount", l.Amount.String())
	u.afterCommit(ctx, l.LoanID, events.LoanIssued{
		EventID:    events.NewEventID(),
		LoanID:     l.LoanID,
		EmployeeID: l.EmployeeID,
		Amount:     l.Amount,
		TermMonths: l.TermMonths,
		OccurredAt: issuedAt,
	})

	dto := toLoanDTO(*l)
	return &dto, nil
}

func (u *Usecase) analyze(ctx context.Context, emp employee.Employee, in IssueInput) string {
	existing, err := u.loans.ListByEmployeeID(ctx, emp.EmployeeID)
	if err != nil {
		u.log.Warn("advisory: could not load existing loans", "employee_id", emp.EmployeeID, "error", err)
	}
	text, err := u.advisor.Analyze(ctx, advisory.AnalysisInput{
		Employee:      emp,
		Amount:        in.Amount,
		TermMonths:    in.TermMonths,
		Reason:        in.Reason,
		ExistingLoans: existing,
	})
	if err != nil {
		u.log.Warn("advisory unavailable, storing placeholder", "employee_id", emp.EmployeeID, "error", err)
		return advisory.Fallback(err)
	}
	return text
}

type repayOutcome struct {
	tx   ledger.Transaction
	loan domain.Loan
}

// RecordRepayment appends a REPAYMENT and lowers the loan balance in one
// transaction, serialized per loan.
func (u *Usecase) RecordRepayment(ctx context.Context, in RepayInput) (*RepaymentDTO, error) {
	if err := ledger.CheckAmount(in.Amount); err != nil {
		return nil, err
	}
	date := u.now()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	unlock := u.locks.Lock(in.LoanID)
	defer unlock()

	var (
		out repayOutcome
		err error
	)
	for attempt := 1; ; attempt++ {
		out, err = u.repayOnce(ctx, in.LoanID, in.Amount, date)
		if !errors.Is(err, domain.ErrConcurrentUpdate) || attempt == maxRepayAttempts {
			break
		}
		u.log.Warn("repayment lost a concurrent update, retrying", "loan_id", in.LoanID, "attempt", attempt)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	u.log.Info("repayment recorded",
		"loan_id", out.loan.LoanID,
		"amount", out.tx.Amount.String(),
		"remaining", out.loan.RemainingAmount.String(),
		"status", out.loan.Status,
	)
	evs := []events.Event{events.RepaymentRecorded{
		EventID:         events.NewEventID(),
		LoanID:          out.loan.LoanID,
		EmployeeID:      out.loan.EmployeeID,
		TransactionID:   out.tx.TransactionID,
		Amount:          out.tx.Amount,
		RemainingAmount: out.loan.RemainingAmount,
		OccurredAt:      u.now(),
	}}
	if out.loan.Status == domain.StatusPaid {
		evs = append(evs, events.LoanPaid{
			EventID:    events.NewEventID(),
			LoanID:     out.loan.LoanID,
			EmployeeID: out.loan.EmployeeID,
			Amount:     out.loan.Amount,
			OccurredAt: u.now(),
		})
	}
	u.afterCommit(ctx, out.loan.LoanID, evs...)

	return &RepaymentDTO{
		Transaction: toTransactionDTO(out.tx),
		Loan:        toLoanDTO(out.loan),
	}, nil
}

func (u *Usecase) repayOnce(ctx context.Context, loanID string, amount decimal.Decimal, date time.Time) (repayOutcome, error) {
	var out repayOutcome
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		history, err := r.Transactions.ListByLoanID(ctx, loanID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		if err := report.Verify(*l, history); err != nil {
			u.log.Error("ledger divergence, repayment refused",
				"loan_id", l.LoanID,
				"stored_remaining", l.RemainingAmount.String(),
				"error", err,
			)
			return err
		}

		expected := l.Version
		if err := l.ApplyRepayment(amount); err != nil {
			return err
		}
		if err := l.CheckInvariants(); err != nil {
			return err
		}
		t, err := ledger.NewRepayment(id.NewID32(), l.LoanID, amount, date)
		if err != nil {
			return err
		}
		if err := r.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("append repayment: %w", err)
		}
		if err := r.Loans.UpdateBalance(ctx, l, expected); err != nil {
			return err
		}
		out = repayOutcome{tx: *t, loan: *l}
		return nil
	})
	return out, err
}

// afterCommit runs the best-effort side effects of a committed write.
func (u *Usecase) afterCommit(ctx context.Context, key string, evs ...events.Event) {
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx); err != nil {
			u.log.Warn("dashboard cache invalidation failed", "error", err)
		}
	}
	for _, e := range evs {
		if err := u.events.Publish(ctx, key, e); err != nil {
			u.log.Warn("event publish failed", "type", e.Type(), "loan_id", key, "error", err)
		}
	}
}

// ListLoans returns every loan, or only the employee's when employeeID is set.
func (u *Usecase) ListLoans(ctx context.Context, employeeID string) ([]LoanDTO, error) {
	var (
		loans []domain.Loan
		err   error
	)
	if employeeID != "" {
		loans, err = u.loans.ListByEmployeeID(ctx, employeeID)
	} else {
		loans, err = u.loans.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanDTO(l))
	}
	return out, nil
}

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, loanErr(err)
	}
	dto := toLoanDTO(*l)
	return &dto, nil
}

func (u *Usecase) ListTransactions(ctx context.Context) ([]TransactionDTO, error) {
	txs, err := u.txs.List(ctx)
	if err != nil {
		return nil, err
	}
	return toTransactionDTOs(txs), nil
}

// GetRepaymentHistory lists the loan's repayments, newest first.
func (u *Usecase) GetRepaymentHistory(ctx context.Context, loanID string) ([]TransactionDTO, error) {
	if _, err := u.loans.GetByLoanID(ctx, loanID); err != nil {
		return nil, loanErr(err)
	}
	txs, err := u.txs.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toTransactionDTOs(report.PaymentHistory(loanID, txs)), nil
}

func loanErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func employeeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employee.ErrNotFound
	}
	return err
}
