package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Health check
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
