package http

import (
	"net/http"
	"strconv"

	"kasbon-backend/internal/usecase/reconcile"
	"kasbon-backend/internal/usecase/report"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	dashboard *report.Usecase
	reconcile *reconcile.Usecase
}

func NewReportHandler(d *report.Usecase, r *reconcile.Usecase) *ReportHandler {
	return &ReportHandler{dashboard: d, reconcile: r}
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	s, err := h.dashboard.Dashboard(c.Request().Context())
	if err != nil {
		return respondError(c, "build dashboard", err)
	}
	return c.JSON(http.StatusOK, s)
}

// Reconcile checks the ledger; ?repair=true also resets divergent balances.
func (h *ReportHandler) Reconcile(c echo.Context) error {
	repair := false
	if v := c.QueryParam("repair"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "failed to reconcile ledger",
				Details: []FieldError{{Field: "repair", Message: "must be a boolean"}},
			})
		}
		repair = b
	}
	rep, err := h.reconcile.Run(c.Request().Context(), repair)
	if err != nil {
		return respondError(c, "reconcile ledger", err)
	}
	return c.JSON(http.StatusOK, rep)
}
