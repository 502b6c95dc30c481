package ledger

import "context"

// Repository is append-only: there is no update or delete.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	ListByLoanID(ctx context.Context, loanID string) ([]Transaction, error)
	List(ctx context.Context) ([]Transaction, error)
}
