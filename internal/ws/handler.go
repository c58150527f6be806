package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades a relay connection. Query: action=create|join,
// code (join only), player (optional opaque id, stops self-joins).
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		action := c.Query("action")
		if action != ActionCreate && action != ActionJoin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action must be create or join"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ws upgrade error:", err)
			return
		}

		client := NewClient(conn, hub, c.Query("player"))
		go client.Run(action, c.Query("code"))
	}
}
