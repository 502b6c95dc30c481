package mysql

import (
	"context"

	loanDomain "kasbon-backend/internal/domain/loan"
	"kasbon-backend/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate issues SELECT ... FOR UPDATE; only meaningful inside a transaction.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByEmployeeID(ctx context.Context, employeeID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) CountByEmployeeID(ctx context.Context, employeeID string) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Where("employee_id = ?", employeeID).Count(&n)
	return n, res.Error
}

// UpdateBalance is a compare-and-swap on the version column. Amount and the
// descriptive fields are never part of the update.
func (r *LoanRepository) UpdateBalance(ctx context.Context, l *loanDomain.Loan, expectedVersion int64) error {
	logger.DatabaseCall("update_balance", "loans", "loan_id", l.LoanID, "version", expectedVersion)
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("loan_id = ? AND version = ?", l.LoanID, expectedVersion).
		Updates(map[string]any{
			"remaining_amount": l.RemainingAmount,
			"status":           l.Status,
			"version":          expectedVersion + 1,
		})
	logger.DatabaseResult("update_balance", "loans", res.Error, "rows", res.RowsAffected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrConcurrentUpdate
	}
	l.Version = expectedVersion + 1
	return nil
}
