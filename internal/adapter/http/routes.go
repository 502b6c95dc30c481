package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health    *Handler
	Employees *EmployeeHandler
	Loans     *LoanHandler
	Reports   *ReportHandler
}

// Register mounts every route. mw wraps the mutating ones (idempotency).
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	e.POST("/employees", h.Employees.Create, mw...)
	e.GET("/employees", h.Employees.List)
	e.GET("/employees/:employee_id", h.Employees.Get)
	e.PUT("/employees/:employee_id", h.Employees.Update, mw...)
	e.DELETE("/employees/:employee_id", h.Employees.Delete, mw...)
	e.GET("/employees/:employee_id/advice", h.Employees.Advice)

	e.POST("/loans", h.Loans.Issue, mw...)
	e.GET("/loans", h.Loans.List)
	e.GET("/loans/:loan_id", h.Loans.Get)
	e.POST("/loans/:loan_id/repayments", h.Loans.Repay, mw...)
	e.GET("/loans/:loan_id/repayments", h.Loans.RepaymentHistory)
	e.GET("/transactions", h.Loans.Transactions)

	e.GET("/dashboard", h.Reports.Dashboard)
	e.POST("/admin/reconcile", h.Reports.Reconcile)
}
