package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/THF151/booking-backend/internal/dto"
)

// ErrorHandler renders every unhandled error as the service's JSON error
// shape. Non-HTTP errors are reported as 500 without leaking internals.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
