package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/inventory/internal/common"
	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/dmitrijs2005/inventory/internal/server/models"
	"github.com/labstack/echo"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// statusFor maps an error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorInvalidID):
		return http.StatusBadRequest, common.ErrorInvalidID.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// errorHandler renders errors returned by handlers as {"error": message}.
func errorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := statusFor(err)
		body := errorResponse{Error: msg}

		var ve *models.ValidationError
		if errors.As(err, &ve) {
			body.Fields = ve.Fields
		}

		if code >= http.StatusInternalServerError {
			logger.Error(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Error(c.Request().Context(), "write error response", "error", err)
		}
	}
}
