// Package report holds the read-only figures computed from the ledger entities.
// Every function is pure, never fails, and treats empty input as zero.
package report

import (
	"sort"

	"kasbon-backend/internal/domain/employee"
	"kasbon-backend/internal/domain/ledger"
	"kasbon-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// RecentLimit is how many loans the dashboard lists as recent.
const RecentLimit = 5

var hundred = decimal.NewFromInt(100)

// Outstanding sums the remaining amount of ACTIVE loans.
func Outstanding(loans []loan.Loan) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range loans {
		if l.Status == loan.StatusActive {
			sum = sum.Add(l.RemainingAmount)
		}
	}
	return sum
}

// TotalDisbursed sums the principal of every loan regardless of status.
func TotalDisbursed(loans []loan.Loan) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range loans {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// TotalRepaid sums REPAYMENT transactions. This is the authoritative figure.
func TotalRepaid(txs []ledger.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Type == ledger.KindRepayment {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// TotalRepaidApprox is TotalDisbursed - Outstanding. It only agrees with
// TotalRepaid while every loan's balance matches its log.
func TotalRepaidApprox(loans []loan.Loan) decimal.Decimal {
	return TotalDisbursed(loans).Sub(Outstanding(loans))
}

// RepaymentPercentage returns repaid/disbursed*100 rounded to two places, 0 when nothing was lent.
func RepaymentPercentage(repaid, disbursed decimal.Decimal) decimal.Decimal {
	if !disbursed.IsPositive() {
		return decimal.Zero
	}
	return repaid.Mul(hundred).Div(disbursed).Round(2)
}

// StatusDistribution counts loans per status. Statuses with no loans are absent.
func StatusDistribution(loans []loan.Loan) map[loan.Status]int {
	out := make(map[loan.Status]int)
	for _, l := range loans {
		out[l.Status]++
	}
	return out
}

// PerEmployeeDebt sums the remaining amount of the employee's ACTIVE loans.
func PerEmployeeDebt(employeeID string, loans []loan.Loan) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range loans {
		if l.EmployeeID == employeeID && l.Status == loan.StatusActive {
			sum = sum.Add(l.RemainingAmount)
		}
	}
	return sum
}

// ActiveLoanCount counts the employee's ACTIVE loans.
func ActiveLoanCount(employeeID string, loans []loan.Loan) int {
	n := 0
	for _, l := range loans {
		if l.EmployeeID == employeeID && l.Status == loan.StatusActive {
			n++
		}
	}
	return n
}

// ActiveBorrowers counts distinct employees holding at least one ACTIVE loan.
func ActiveBorrowers(loans []loan.Loan) int {
	seen := make(map[string]struct{})
	for _, l := range loans {
		if l.Status == loan.StatusActive {
			seen[l.EmployeeID] = struct{}{}
		}
	}
	return len(seen)
}

// PaymentHistory returns the loan's REPAYMENT transactions, newest date first.
// Transactions sharing a date keep their input order.
func PaymentHistory(loanID string, txs []ledger.Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, 0)
	for _, t := range txs {
		if t.LoanID == loanID && t.Type == ledger.KindRepayment {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// RecentLoans returns up to n loans ordered by request date, newest first.
func RecentLoans(loans []loan.Loan, n int) []loan.Loan {
	out := make([]loan.Loan, len(loans))
	copy(out, loans)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RepaidFor sums REPAYMENT transactions of one loan.
func RepaidFor(loanID string, txs []ledger.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.LoanID == loanID && t.Type == ledger.KindRepayment {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// DisbursementsFor counts and sums DISBURSEMENT transactions of one loan.
func DisbursementsFor(loanID string, txs []ledger.Transaction) (int, decimal.Decimal) {
	n, sum := 0, decimal.Zero
	for _, t := range txs {
		if t.LoanID == loanID && t.Type == ledger.KindDisbursement {
			n++
			sum = sum.Add(t.Amount)
		}
	}
	return n, sum
}

// DeriveRemaining recomputes a loan's balance from the log alone.
func DeriveRemaining(l loan.Loan, txs []ledger.Transaction) decimal.Decimal {
	return l.Amount.Sub(RepaidFor(l.LoanID, txs))
}

type EmployeeDebt struct {
	EmployeeID  string          `json:"employee_id"`
	Name        string          `json:"name"`
	Debt        decimal.Decimal `json:"debt"`
	ActiveLoans int             `json:"active_loans"`
}

type Summary struct {
	TotalDisbursed      decimal.Decimal     `json:"total_disbursed"`
	Outstanding         decimal.Decimal     `json:"outstanding"`
	TotalRepaid         decimal.Decimal     `json:"total_repaid"`
	TotalRepaidApprox   decimal.Decimal     `json:"total_repaid_approx"`
	RepaymentPercentage decimal.Decimal     `json:"repayment_percentage"`
	StatusDistribution  map[loan.Status]int `json:"status_distribution"`
	ActiveBorrowers     int                 `json:"active_borrowers"`
	RecentLoans         []loan.Loan         `json:"recent_loans"`
	EmployeeDebts       []EmployeeDebt      `json:"employee_debts"`
}

// Summarize builds every dashboard figure in one pass over the entity set.
func Summarize(employees []employee.Employee, loans []loan.Loan, txs []ledger.Transaction) Summary {
	disbursed := TotalDisbursed(loans)
	repaid := TotalRepaid(txs)

	debts := make([]EmployeeDebt, 0, len(employees))
	for _, e := range employees {
		debts = append(debts, EmployeeDebt{
			EmployeeID:  e.EmployeeID,
			Name:        e.Name,
			Debt:        PerEmployeeDebt(e.EmployeeID, loans),
			ActiveLoans: ActiveLoanCount(e.EmployeeID, loans),
		})
	}

	return Summary{
		TotalDisbursed:      disbursed,
		Outstanding:         Outstanding(loans),
		TotalRepaid:         repaid,
		TotalRepaidApprox:   TotalRepaidApprox(loans),
		RepaymentPercentage: RepaymentPercentage(repaid, disbursed),
		StatusDistribution:  StatusDistribution(loans),
		ActiveBorrowers:     ActiveBorrowers(loans),
		RecentLoans:         RecentLoans(loans, RecentLimit),
		EmployeeDebts:       debts,
	}
}
