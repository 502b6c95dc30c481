package mysql

import (
	"testing"
	"time"

	employeeDomain "kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/ledger"
	loanDomain "kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/testutil/sqlitedb"
	"kasbon-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return sqlitedb.Open(t)
}

func rp(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func makeEmployee(name string) *employeeDomain.Employee {
	return &employeeDomain.Employee{
		EmployeeID: id.NewID32(),
		Name:       name,
		Position:   "Driver",
		Salary:     rp(3_800_000),
		JoinDate:   time.Date(2021, 11, 5, 0, 0, 0, 0, time.UTC),
		Phone:      "081345678901",
	}
}

func makeLoan(loanID, employeeID string, amount int64) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanID:          loanID,
		EmployeeID:      employeeID,
		Amount:          rp(amount),
		RemainingAmount: rp(amount),
		Reason:          "Biaya Sekolah Anak",
		Status:          loanDomain.StatusActive,
		TermMonths:      3,
		RequestDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		StartDate:       time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
	}
}

func makeTx(loanID string, kind ledger.Kind, amount int64, date time.Time) *ledger.Transaction {
	return &ledger.Transaction{
		TransactionID: id.NewID32(),
		LoanID:        loanID,
		Amount:        rp(amount),
		Date:          date,
		Type:          kind,
	}
}
