package employeemock

import (
	"context"

	domain "kasbon-backend/internal/domain/employee"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, e *domain.Employee) error
	SaveFn            func(ctx context.Context, e *domain.Employee) error
	DeleteFn          func(ctx context.Context, e *domain.Employee) error
	GetByEmployeeIDFn func(ctx context.Context, employeeID string) (*domain.Employee, error)
	ForUpdateFn       func(ctx context.Context, employeeID string) (*domain.Employee, error)
	ListFn            func(ctx context.Context) ([]domain.Employee, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Employee) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, e *domain.Employee) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, e)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, e *domain.Employee) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, e)
	}
	return nil
}

func (m *Repo) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	if m.GetByEmployeeIDFn != nil {
		return m.GetByEmployeeIDFn(ctx, employeeID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByEmployeeIDForUpdate(ctx context.Context, employeeID string) (*domain.Employee, error) {
	if m.ForUpdateFn != nil {
		return m.ForUpdateFn(ctx, employeeID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Employee, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}
