package employee

import "context"

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	Save(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, e *Employee) error
	GetByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	// GetByEmployeeIDForUpdate row-locks the employee until the transaction ends.
	GetByEmployeeIDForUpdate(ctx context.Context, employeeID string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
}
