// Package advisory talks to the external text generator that comments on loan
// requests. Its output is an opaque annotation and never drives ledger state.
package advisory

import (
	"errors"

	"kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/errs"
	"kasbon-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// Placeholder texts shown instead of generated text.
const (
	PlaceholderNoKey   = "API Key tidak ditemukan. Analisis AI tidak tersedia."
	PlaceholderFailure = "Terjadi kesalahan saat menghubungi AI. Silakan coba lagi nanti."
	PlaceholderEmpty   = "Gagal menghasilkan analisis."

	AdvicePlaceholderNoKey   = "API Key tidak tersedia."
	AdvicePlaceholderFailure = "Gagal memuat saran."
	AdvicePlaceholderEmpty   = "Tidak ada saran."
)

var (
	ErrNoAPIKey    = errs.New(errs.ErrExternalService, "advisory api key not configured")
	ErrEmptyAnswer = errs.New(errs.ErrExternalService, "advisory returned no text")
)

type AnalysisInput struct {
	Employee      employee.Employee
	Amount        decimal.Decimal
	TermMonths    int
	Reason        string
	ExistingLoans []loan.Loan
}

type AdviceInput struct {
	Employee employee.Employee
	Loans    []loan.Loan
}

// Fallback maps an Analyze error to the text stored on the loan instead.
func Fallback(err error) string {
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return PlaceholderNoKey
	case errors.Is(err, ErrEmptyAnswer):
		return PlaceholderEmpty
	}
	return PlaceholderFailure
}

// AdviceFallback maps an Advise error to the text shown instead.
func AdviceFallback(err error) string {
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return AdvicePlaceholderNoKey
	case errors.Is(err, ErrEmptyAnswer):
		return AdvicePlaceholderEmpty
	}
	return AdvicePlaceholderFailure
}

// activeDebt returns the employee's loans that still carry a balance and their total.
func activeDebt(employeeID string, loans []loan.Loan) (int, decimal.Decimal) {
	n, sum := 0, decimal.Zero
	for _, l := range loans {
		if l.EmployeeID == employeeID && l.RemainingAmount.IsPositive() {
			n++
			sum = sum.Add(l.RemainingAmount)
		}
	}
	return n, sum
}
