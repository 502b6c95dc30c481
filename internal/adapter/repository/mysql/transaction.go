package mysql

import (
	"context"

	"kasbon-backend/internal/domain/ledger"

	"gorm.io/gorm"
)

// TransactionRepository only inserts and reads; ledger rows are immutable.
type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) ListByLoanID(ctx context.Context, loanID string) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *TransactionRepository) List(ctx context.Context) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}
