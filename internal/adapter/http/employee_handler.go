package http

import (
	"net/http"
	"strings"

	"kasbon-backend/internal/usecase/employee"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type EmployeeHandler struct{ uc *employee.Usecase }

func NewEmployeeHandler(uc *employee.Usecase) *EmployeeHandler { return &EmployeeHandler{uc: uc} }

type createEmployeeReq struct {
	Name     string          `json:"name"      validate:"required"`
	Position string          `json:"position"  validate:"required"`
	Salary   decimal.Decimal `json:"salary"    validate:"gte=0,dec2"`
	JoinDate string          `json:"join_date" validate:"required,datetime=2006-01-02"`
	Phone    string          `json:"phone"     validate:"required"`
}

type updateEmployeeReq struct {
	Name     *string          `json:"name"      validate:"omitempty,min=1"`
	Position *string          `json:"position"  validate:"omitempty,min=1"`
	Salary   *decimal.Decimal `json:"salary"    validate:"omitempty,gte=0,dec2"`
	JoinDate *string          `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	Phone    *string          `json:"phone"     validate:"omitempty,min=1"`
}

func (h *EmployeeHandler) Create(c echo.Context) error {
	var req createEmployeeReq
	if ok, err := bindAndValidate(c, "add employee", &req); !ok {
		return err
	}
	in := employee.AddInput{
		Name:     req.Name,
		Position: req.Position,
		Salary:   req.Salary,
		Phone:    req.Phone,
	}
	if d := parseOptionalDate(req.JoinDate); d != nil {
		in.JoinDate = *d
	}
	dto, err := h.uc.AddEmployee(c.Request().Context(), in)
	if err != nil {
		return respondError(c, "add employee", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *EmployeeHandler) List(c echo.Context) error {
	out, err := h.uc.ListEmployees(c.Request().Context())
	if err != nil {
		return respondError(c, "list employees", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *EmployeeHandler) Get(c echo.Context) error {
	dto, err := h.uc.GetEmployee(c.Request().Context(), c.Param("employee_id"))
	if err != nil {
		return respondError(c, "get employee", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *EmployeeHandler) Update(c echo.Context) error {
	var req updateEmployeeReq
	if ok, err := bindAndValidate(c, "update employee", &req); !ok {
		return err
	}
	in := employee.UpdateInput{
		Name:     req.Name,
		Position: req.Position,
		Salary:   req.Salary,
		Phone:    req.Phone,
	}
	if req.JoinDate != nil {
		in.JoinDate = parseOptionalDate(strings.TrimSpace(*req.JoinDate))
	}
	dto, err := h.uc.UpdateEmployee(c.Request().Context(), c.Param("employee_id"), in)
	if err != nil {
		return respondError(c, "update employee", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *EmployeeHandler) Delete(c echo.Context) error {
	if err := h.uc.DeleteEmployee(c.Request().Context(), c.Param("employee_id")); err != nil {
		return respondError(c, "delete employee", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EmployeeHandler) Advice(c echo.Context) error {
	dto, err := h.uc.FinancialAdvice(c.Request().Context(), c.Param("employee_id"))
	if err != nil {
		return respondError(c, "get financial advice", err)
	}
	return c.JSON(http.StatusOK, dto)
}
