// Package seed loads the demo dataset through the ledger operations, so the
// seeded rows satisfy the same rules as anything created over the API.
package seed

import (
	"context"
	"fmt"
	"time"

	"kasbon-backend/internal/logger"
	"kasbon-backend/internal/usecase/employee"
	"kasbon-backend/internal/usecase/loan"

	"github.com/shopspring/decimal"
)

type Employees interface {
	AddEmployee(ctx context.Context, in employee.AddInput) (*employee.EmployeeDTO, error)
	ListEmployees(ctx context.Context) ([]employee.EmployeeDTO, error)
}

type Loans interface {
	IssueLoan(ctx context.Context, in loan.IssueInput) (*loan.LoanDTO, error)
	RecordRepayment(ctx context.Context, in loan.RepayInput) (*loan.RepaymentDTO, error)
}

type demoEmployee struct {
	name, position, phone string
	salary                int64
	joined                string
}

type demoLoan struct {
	employee         int // index into demoEmployees
	amount           int64
	reason           string
	requested, start string
	term             int
	repayments       []demoRepayment
}

type demoRepayment struct {
	amount int64
	date   string
}

var demoEmployees = []demoEmployee{
	{"Budi Santoso", "Sales Manager", "081234567890", 8_500_000, "2022-01-15"},
	{"Siti Aminah", "Admin Staff", "081298765432", 4_500_000, "2023-03-10"},
	{"Rizky Pratama", "Driver", "081345678901", 3_800_000, "2021-11-05"},
	{"Dewi Lestari", "HR Specialist", "081987654321", 6_200_000, "2020-08-20"},
}

var demoLoans = []demoLoan{
	{0, 5_000_000, "Renovasi Rumah", "2023-10-01", "2023-10-05", 5, []demoRepayment{
		{1_000_000, "2023-11-05"}, {1_000_000, "2023-12-05"}, {1_000_000, "2024-01-05"},
	}},
	{2, 1_500_000, "Biaya Sekolah Anak", "2024-01-10", "2024-01-12", 3, nil},
	{1, 2_000_000, "Servis Motor", "2023-06-01", "2023-06-02", 2, []demoRepayment{
		{1_000_000, "2023-07-02"}, {1_000_000, "2023-08-02"},
	}},
}

// Result counts what Demo wrote.
type Result struct {
	Employees  int
	Loans      int
	Repayments int
	Skipped    bool
}

// Demo seeds four employees and three loans with their repayments. It does
// nothing when any employee already exists.
func Demo(ctx context.Context, emps Employees, loans Loans) (Result, error) {
	existing, err := emps.ListEmployees(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed: list employees: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("seed skipped, employees already present", "count", len(existing))
		return Result{Skipped: true}, nil
	}

	var res Result
	ids := make([]string, len(demoEmployees))
	for i, d := range demoEmployees {
		e, err := emps.AddEmployee(ctx, employee.AddInput{
			Name:     d.name,
			Position: d.position,
			Salary:   decimal.NewFromInt(d.salary),
			JoinDate: day(d.joined),
			Phone:    d.phone,
		})
		if err != nil {
			return res, fmt.Errorf("seed: employee %s: %w", d.name, err)
		}
		ids[i] = e.EmployeeID
		res.Employees++
	}

	for _, d := range demoLoans {
		requested, start := day(d.requested), day(d.start)
		l, err := loans.IssueLoan(ctx, loan.IssueInput{
			EmployeeID:  ids[d.employee],
			Amount:      decimal.NewFromInt(d.amount),
			TermMonths:  d.term,
			Reason:      d.reason,
			RequestDate: &requested,
			StartDate:   &start,
		})
		if err != nil {
			return res, fmt.Errorf("seed: loan %q: %w", d.reason, err)
		}
		res.Loans++
		for _, r := range d.repayments {
			date := day(r.date)
			if _, err := loans.RecordRepayment(ctx, loan.RepayInput{
				LoanID: l.LoanID,
				Amount: decimal.NewFromInt(r.amount),
				Date:   &date,
			}); err != nil {
				return res, fmt.Errorf("seed: repayment on %s: %w", l.LoanID, err)
			}
			res.Repayments++
		}
	}
	logger.Info("demo data seeded", "employees", res.Employees, "loans", res.Loans, "repayments", res.Repayments)
	return res, nil
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}
