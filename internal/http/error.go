package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

func errorHandler(logger *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		if err == nil {
			return
		}
		errLoggedMsg := err.Error() + " on " + c.Request().Method + " " + c.Request().URL.Path
		if corbiError, ok := err.(*er.Error); ok {
			logger.Error(errLoggedMsg)
			finalErr, status := er.HTTPError(*corbiError)
			if err := c.JSON(status, finalErr); err != nil {
				logger.Error(err.Error())
				c.Response().Status = http.StatusInternalServerError
			}
			return
		}
		logger.Error(errLoggedMsg)
		if strings.Contains(err.Error(), "Field validation") {
			writeJSONError(logger, c, http.StatusBadRequest, strings.Split(err.Error(), "\n")...)
			return
		}
		if echoError, ok := err.(*echo.HTTPError); ok {
			if echoError.Code == http.StatusMethodNotAllowed {
				writeJSONError(logger, c, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			if echoError.Code == http.StatusNotFound {
				writeJSONError(logger, c, http.StatusNotFound, "not found")
				return
			}
		}
		writeJSONError(logger, c, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSONError(logger *slog.Logger, c echo.Context, status int, messages ...string) {
	err := c.JSON(status, er.Error{
		Messages: messages,
	})
	if err != nil {
		logger.Error(err.Error())
		c.Response().Status = http.StatusInternalServerError
	}
}
