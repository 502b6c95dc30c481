package employeemock

import (
	"context"
	"errors"
	"testing"

	domain "kasbon-backend/internal/domain/employee"
)

func TestRepo_ForwardsAndDefaults(t *testing.T) {
	ctx := context.Background()
	want := &domain.Employee{EmployeeID: "E-1"}

	m := &Repo{
		GetByEmployeeIDFn: func(_ context.Context, id string) (*domain.Employee, error) {
			if id != "E-1" {
				t.Fatalf("id not forwarded: %s", id)
			}
			return want, nil
		},
	}
	got, err := m.GetByEmployeeID(ctx, "E-1")
	if err != nil || got != want {
		t.Fatalf("GetByEmployeeID = %v, %v", got, err)
	}

	empty := &Repo{}
	if err := empty.Create(ctx, want); err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if err := empty.Save(ctx, want); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if err := empty.Delete(ctx, want); err != nil {
		t.Fatalf("Delete default: %v", err)
	}
	if _, err := empty.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("List default: %v", err)
	}
	if _, err := empty.GetByEmployeeID(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByEmployeeID default: %v", err)
	}
	if _, err := empty.GetByEmployeeIDForUpdate(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByEmployeeIDForUpdate default: %v", err)
	}
}
