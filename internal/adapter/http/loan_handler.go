package http

import (
	"net/http"

	"kasbon-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type issueLoanReq struct {
	EmployeeID   string          `json:"employee_id"   validate:"required,hex32"`
	Amount       decimal.Decimal `json:"amount"        validate:"gt=0,dec2"`
	TermMonths   int             `json:"term_months"   validate:"gte=1,lte=24"`
	Reason       string          `json:"reason"        validate:"required"`
	RequestDate  string          `json:"request_date"  validate:"omitempty,datetime=2006-01-02"`
	StartDate    string          `json:"start_date"    validate:"omitempty,datetime=2006-01-02"`
	WithAdvisory bool            `json:"with_advisory"`
}

type repayReq struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	Date   string          `json:"date"   validate:"omitempty,datetime=2006-01-02"`
}

func (h *LoanHandler) Issue(c echo.Context) error {
	var req issueLoanReq
	if ok, err := bindAndValidate(c, "issue loan", &req); !ok {
		return err
	}
	dto, err := h.uc.IssueLoan(c.Request().Context(), loan.IssueInput{
		EmployeeID:   req.EmployeeID,
		Amount:       req.Amount,
		TermMonths:   req.TermMonths,
		Reason:       req.Reason,
		RequestDate:  parseOptionalDate(req.RequestDate),
		StartDate:    parseOptionalDate(req.StartDate),
		WithAdvisory: req.WithAdvisory,
	})
	if err != nil {
		return respondError(c, "issue loan", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	out, err := h.uc.ListLoans(c.Request().Context(), c.QueryParam("employee_id"))
	if err != nil {
		return respondError(c, "list loans", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.GetLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, "get loan", err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayReq
	if ok, err := bindAndValidate(c, "record repayment", &req); !ok {
		return err
	}
	dto, err := h.uc.RecordRepayment(c.Request().Context(), loan.RepayInput{
		LoanID: c.Param("loan_id"),
		Amount: req.Amount,
		Date:   parseOptionalDate(req.Date),
	})
	if err != nil {
		return respondError(c, "record repayment", err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) RepaymentHistory(c echo.Context) error {
	out, err := h.uc.GetRepaymentHistory(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, "get repayment history", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Transactions(c echo.Context) error {
	out, err := h.uc.ListTransactions(c.Request().Context())
	if err != nil {
		return respondError(c, "list transactions", err)
	}
	return c.JSON(http.StatusOK, out)
}
