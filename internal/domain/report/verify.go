package report

import (
	"fmt"
	"strings"

	"kasbon-backend/internal/domain/errs"
	"kasbon-backend/internal/domain/ledger"
	"kasbon-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

const (
	FindingRemainingMismatch  = "remaining_mismatch"
	FindingDisbursementCount  = "disbursement_count"
	FindingDisbursementAmount = "disbursement_amount"
	FindingStatusMismatch     = "status_mismatch"
	FindingRange              = "range"
)

// Finding is one way a loan disagrees with its transaction log.
type Finding struct {
	LoanID   string          `json:"loan_id"`
	Code     string          `json:"code"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
	Detail   string          `json:"detail,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s: stored %s expected %s", f.LoanID, f.Code, f.Stored, f.Expected)
}

// Audit compares a loan against its own transactions. txs may hold other
// loans' rows; they are ignored.
func Audit(l loan.Loan, txs []ledger.Transaction) []Finding {
	var out []Finding

	derived := DeriveRemaining(l, txs)
	if !derived.Equal(l.RemainingAmount) {
		out = append(out, Finding{LoanID: l.LoanID, Code: FindingRemainingMismatch, Stored: l.RemainingAmount, Expected: derived})
	}

	n, disbursed := DisbursementsFor(l.LoanID, txs)
	if n != 1 {
		out = append(out, Finding{
			LoanID:   l.LoanID,
			Code:     FindingDisbursementCount,
			Stored:   decimal.NewFromInt(int64(n)),
			Expected: decimal.NewFromInt(1),
		})
	} else if !disbursed.Equal(l.Amount) {
		out = append(out, Finding{LoanID: l.LoanID, Code: FindingDisbursementAmount, Stored: disbursed, Expected: l.Amount})
	}

	if derived.IsNegative() || derived.GreaterThan(l.Amount) {
		out = append(out, Finding{
			LoanID:   l.LoanID,
			Code:     FindingRange,
			Stored:   derived,
			Expected: l.Amount,
			Detail:   "repayments exceed principal",
		})
	}

	switch {
	case l.Status == loan.StatusPaid && !derived.IsZero(),
		l.Status == loan.StatusActive && derived.IsZero():
		out = append(out, Finding{
			LoanID:   l.LoanID,
			Code:     FindingStatusMismatch,
			Stored:   l.RemainingAmount,
			Expected: derived,
			Detail:   "status " + string(l.Status),
		})
	}
	return out
}

// Verify returns a consistency error when Audit reports anything.
func Verify(l loan.Loan, txs []ledger.Transaction) error {
	findings := Audit(l, txs)
	if len(findings) == 0 {
		return nil
	}
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, f.String())
	}
	return errs.Inconsistent("ledger divergence: " + strings.Join(parts, "; "))
}
