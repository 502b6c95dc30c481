package ledger

import (
	"time"

	"kasbon-backend/internal/domain/errs"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDisbursement Kind = "DISBURSEMENT"
	KindRepayment    Kind = "REPAYMENT"
)

// Transaction is one immutable money movement against a loan.
// Rows are only ever inserted.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string          `gorm:"size:32;uniqueIndex:ux_transactions_transaction_id" json:"transaction_id"`
	LoanID        string          `gorm:"size:32;not null;index:idx_transactions_loan_id" json:"loan_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date          time.Time       `gorm:"not null" json:"date"`
	Type          Kind            `gorm:"size:16;not null" json:"type"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

// CheckAmount accepts positive amounts with at most MoneyScale decimals.
// Anything finer would be rounded by the decimal(18,2) columns.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.Invalid("amount", "must be greater than 0")
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return errs.Invalid("amount", "must have at most 2 decimal places")
	}
	return nil
}

func newTransaction(id, loanID string, kind Kind, amount decimal.Decimal, date time.Time) (*Transaction, error) {
	if err := CheckAmount(amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, errs.Invalid("date", "is required")
	}
	return &Transaction{
		TransactionID: id,
		LoanID:        loanID,
		Amount:        amount,
		Date:          date.UTC(),
		Type:          kind,
	}, nil
}

func NewDisbursement(id, loanID string, amount decimal.Decimal, date time.Time) (*Transaction, error) {
	return newTransaction(id, loanID, KindDisbursement, amount, date)
}

func NewRepayment(id, loanID string, amount decimal.Decimal, date time.Time) (*Transaction, error) {
	return newTransaction(id, loanID, KindRepayment, amount, date)
}
