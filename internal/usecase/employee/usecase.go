package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kasbon-backend/internal/advisory"
	domain "kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/domain/report"
	"kasbon-backend/internal/domain/uow"
	"kasbon-backend/internal/logger"
	"kasbon-backend/pkg/id"

	"gorm.io/gorm"
)

type Adviser interface {
	Advise(ctx context.Context, in advisory.AdviceInput) (string, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Usecase struct {
	repo    domain.Repository
	loans   loan.Repository
	uow     uow.UnitOfWork
	adviser Adviser
	cache   Invalidator
	log     *slog.Logger
}

type Option func(*Usecase)

func WithAdviser(a Adviser) Option { return func(u *Usecase) { u.adviser = a } }
func WithInvalidator(c Invalidator) Option { return func(u *Usecase) { u.cache = c } }

func NewUsecase(repo domain.Repository, loans loan.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{repo: repo, loans: loans, uow: tx, log: logger.WithService("employee")}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) AddEmployee(ctx context.Context, in AddInput) (*EmployeeDTO, error) {
	e := &domain.Employee{
		EmployeeID: id.NewID32(),
		Name:       strings.TrimSpace(in.Name),
		Position:   strings.TrimSpace(in.Position),
		Salary:     in.Salary,
		JoinDate:   in.JoinDate.UTC(),
		Phone:      strings.TrimSpace(in.Phone),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	u.log.Info("employee added", "employee_id", e.EmployeeID)
	u.invalidate(ctx)
	dto := toDTO(*e)
	return &dto, nil
}

func (u *Usecase) ListEmployees(ctx context.Context) ([]EmployeeDTO, error) {
	emps, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EmployeeDTO, 0, len(emps))
	for _, e := range emps {
		out = append(out, toDTO(e))
	}
	return out, nil
}

// GetEmployee returns the employee together with their outstanding debt.
func (u *Usecase) GetEmployee(ctx context.Context, employeeID string) (*OverviewDTO, error) {
	e, err := u.get(ctx, u.repo, employeeID)
	if err != nil {
		return nil, err
	}
	loans, err := u.loans.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &OverviewDTO{
		EmployeeDTO: toDTO(*e),
		Debt:        report.PerEmployeeDebt(employeeID, loans),
		ActiveLoans: report.ActiveLoanCount(employeeID, loans),
		TotalLoans:  len(loans),
	}, nil
}

func (u *Usecase) UpdateEmployee(ctx context.Context, employeeID string, in UpdateInput) (*EmployeeDTO, error) {
	var out EmployeeDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		e, err := u.getForUpdate(ctx, r.Employees, employeeID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			e.Name = strings.TrimSpace(*in.Name)
		}
		if in.Position != nil {
			e.Position = strings.TrimSpace(*in.Position)
		}
		if in.Salary != nil {
			e.Salary = *in.Salary
		}
		if in.JoinDate != nil {
			e.JoinDate = in.JoinDate.UTC()
		}
		if in.Phone != nil {
			e.Phone = strings.TrimSpace(*in.Phone)
		}
		if err := e.Validate(); err != nil {
			return err
		}
		if err := r.Employees.Save(ctx, e); err != nil {
			return fmt.Errorf("save employee: %w", err)
		}
		out = toDTO(*e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.invalidate(ctx)
	return &out, nil
}

// DeleteEmployee removes an employee that no loan references. The employee row
// stays locked from the loan count to the delete.
func (u *Usecase) DeleteEmployee(ctx context.Context, employeeID string) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		e, err := u.getForUpdate(ctx, r.Employees, employeeID)
		if err != nil {
			return err
		}
		n, err := r.Loans.CountByEmployeeID(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("count loans: %w", err)
		}
		if n > 0 {
			return domain.ErrHasLoans
		}
		return r.Employees.Delete(ctx, e)
	})
	if err != nil {
		return err
	}
	u.log.Info("employee deleted", "employee_id", employeeID)
	u.invalidate(ctx)
	return nil
}

// FinancialAdvice never fails on the advisory side; a placeholder replaces the text.
func (u *Usecase) FinancialAdvice(ctx context.Context, employeeID string) (*AdviceDTO, error) {
	e, err := u.get(ctx, u.repo, employeeID)
	if err != nil {
		return nil, err
	}
	if u.adviser == nil {
		return &AdviceDTO{EmployeeID: employeeID, Advice: advisory.AdvicePlaceholderNoKey}, nil
	}
	loans, err := u.loans.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	text, err := u.adviser.Advise(ctx, advisory.AdviceInput{Employee: *e, Loans: loans})
	if err != nil {
		u.log.Warn("advisory unavailable, returning placeholder", "employee_id", employeeID, "error", err)
		text = advisory.AdviceFallback(err)
	}
	return &AdviceDTO{EmployeeID: employeeID, Advice: text}, nil
}

func (u *Usecase) get(ctx context.Context, repo domain.Repository, employeeID string) (*domain.Employee, error) {
	e, err := repo.GetByEmployeeID(ctx, employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (u *Usecase) getForUpdate(ctx context.Context, repo domain.Repository, employeeID string) (*domain.Employee, error) {
	e, err := repo.GetByEmployeeIDForUpdate(ctx, employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (u *Usecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx); err != nil {
		u.log.Warn("dashboard cache invalidation failed", "error", err)
	}
}
