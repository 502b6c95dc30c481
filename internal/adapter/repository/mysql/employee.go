package mysql

import (
	"context"

	employeeDomain "kasbon-backend/internal/domain/employee"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRepository struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository { return &EmployeeRepository{db: db} }

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDomain.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) Save(ctx context.Context, e *employeeDomain.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, e *employeeDomain.Employee) error {
	return r.db.WithContext(ctx).Where("employee_id = ?", e.EmployeeID).Delete(&employeeDomain.Employee{}).Error
}

func (r *EmployeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*employeeDomain.Employee, error) {
	var out employeeDomain.Employee
	res := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&out)
	return &out, res.Error
}

// GetByEmployeeIDForUpdate issues SELECT ... FOR UPDATE. Issuance and deletion
// both take this lock, so a loan can never be written for a deleted employee.
func (r *EmployeeRepository) GetByEmployeeIDForUpdate(ctx context.Context, employeeID string) (*employeeDomain.Employee, error) {
	var out employeeDomain.Employee
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		First(&out)
	return &out, res.Error
}

func (r *EmployeeRepository) List(ctx context.Context) ([]employeeDomain.Employee, error) {
	var out []employeeDomain.Employee
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}
