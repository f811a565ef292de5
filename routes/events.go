package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-station-server/middleware"
	ws "car-station-server/websocket"
)

// RegisterEventRoutes exposes the admin dashboard event feed. Token comes in
// as a query parameter because browsers cannot set headers on WebSocket
// upgrades.
func RegisterEventRoutes(router *gin.RouterGroup, hub *ws.Hub) {
	router.GET("/ws/admin", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		principal := middleware.GetPrincipal(c)
		if !principal.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		ws.ServeWebSocket(hub, c.Writer, c.Request, principal.UserID)
	})
}
