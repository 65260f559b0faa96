package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"voiceguard-backend/internal/analysis"
)

// analyzeWebSocketHandler handles GET /analyze/ws. The client opens the
// socket with ?variant=binary|tempered&filename=<name>, sends the audio as a
// single binary message, and receives the analyzer's diagnostic lines as
// they appear, followed by the verdict (or an error):
//
//	{"type": "log", "line": "..."}
//	{"type": "verdict", "verdict": {...}}
//	{"type": "error", "error": "..."}
func analyzeWebSocketHandler(c echo.Context) error {
	variant := analysis.Variant(c.QueryParam("variant"))
	if variant == "" {
		variant = analysis.VariantBinary
	}
	if variant != analysis.VariantBinary && variant != analysis.VariantTempered {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "unknown analysis variant",
		})
	}

	filename := c.QueryParam("filename")
	if filename == "" {
		filename = "upload.wav"
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	sendError := func(msg string) {
		ws.WriteJSON(map[string]string{
			"type":  "error",
			"error": msg,
		})
	}

	// The first (and only) client message is the audio payload
	mt, data, err := ws.ReadMessage()
	if err != nil {
		return nil
	}
	if mt != websocket.BinaryMessage || len(data) == 0 {
		sendError("expected the audio file as a binary message")
		return nil
	}

	verdict, err := gateway.AnalyzeStream(c.Request().Context(), filename, bytes.NewReader(data), variant,
		func(line string) {
			ws.WriteJSON(map[string]string{
				"type": "log",
				"line": line,
			})
		})
	if err != nil {
		var ae *analysis.Error
		if errors.As(err, &ae) {
			c.Logger().Errorf("analysis failed (%s): %s", ae.Reason, ae.Output)
			sendError("Audio analysis failed. Please try again later.")
			return nil
		}
		c.Logger().Error("analysis error: ", err)
		sendError("Audio analysis failed. Please try again later.")
		return nil
	}

	ws.WriteJSON(map[string]interface{}{
		"type":    "verdict",
		"verdict": verdict.Raw,
	})
	return nil
}
