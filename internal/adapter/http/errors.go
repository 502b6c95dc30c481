package http

import (
	"errors"
	"net/http"

	"kasbon-backend/internal/domain/errs"
	"kasbon-backend/internal/logger"

	"github.com/labstack/echo/v4"
)

// respondError maps a usecase error to a status code. Only domain messages are
// echoed back; anything else is logged and answered with the action alone.
func respondError(c echo.Context, action string, err error) error {
	body := ErrorResponse{Error: "failed to " + action}

	var status int
	switch errs.KindOf(err) {
	case errs.ErrValidation:
		status = http.StatusUnprocessableEntity
	case errs.ErrReference:
		status = http.StatusNotFound
	case errs.ErrConflict:
		status = http.StatusConflict
	default:
		logger.ErrorContext(c.Request().Context(), "request failed",
			"action", action,
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, body)
	}

	var de *errs.Error
	if errors.As(err, &de) {
		field := de.Field
		if field == "" {
			field = "_"
		}
		body.Details = []FieldError{{Field: field, Message: de.Msg}}
	}
	return c.JSON(status, body)
}

// bindAndValidate answers 400/422 itself; ok is false when it did.
func bindAndValidate(c echo.Context, action string, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "failed to " + action,
			Details: []FieldError{{Field: "_", Message: "malformed JSON body"}},
		})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "failed to " + action,
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
