package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguard-backend/internal/analysis"
)

// analyzeHandler handles POST /analyze (binary real/synthetic classification)
func analyzeHandler(c echo.Context) error {
	return runAnalysis(c, analysis.VariantBinary)
}

// analyzeTemperedHandler handles POST /analyze-tempered
func analyzeTemperedHandler(c echo.Context) error {
	return runAnalysis(c, analysis.VariantTempered)
}

func runAnalysis(c echo.Context, variant analysis.Variant) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "No file uploaded.",
		})
	}

	src, err := file.Open()
	if err != nil {
		c.Logger().Error("open upload error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Audio analysis failed. Please try again later.",
		})
	}
	defer src.Close()

	verdict, err := gateway.Analyze(c.Request().Context(), file.Filename, src, variant)
	if err != nil {
		var ae *analysis.Error
		if errors.As(err, &ae) {
			c.Logger().Errorf("analysis failed (%s): %s", ae.Reason, ae.Output)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error":   "Audio analysis failed. Please try again later.",
				"details": ae.Output,
			})
		}
		c.Logger().Error("analysis error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Audio analysis failed. Please try again later.",
		})
	}

	// Relay the analyzer's verdict with its schema untouched
	return c.JSONBlob(http.StatusOK, verdict.Raw)
}
