package handlers

import (
	"github.com/gin-gonic/gin"

	"backtest-playback/internal/render"
)

// Stream handles GET /api/v1/stream by upgrading to a WebSocket.
func Stream(hub *render.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
