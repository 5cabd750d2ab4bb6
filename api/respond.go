package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"partstrack/core/fault"
)

// Fail maps a business-rule error to an HTTP response. Payloads always
// use the {"error": ...} shape; internal detail is logged, not leaked.
func Fail(c echo.Context, err error) error {
	fe, ok := fault.As(err)
	if !ok {
		log.Printf("api: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	switch fe.Kind {
	case fault.Invalid:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fe.Message})
	case fault.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": fe.Message})
	case fault.Conflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": fe.Message})
	case fault.InsufficientStock:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":     fe.Message,
			"available": fe.Available,
			"requested": fe.Requested,
		})
	default:
		log.Printf("api: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// UintParam parses a numeric path parameter.
func UintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fault.Invalidf("%s must be a positive integer", name)
	}
	return uint(v), nil
}
