package config

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Upgrader accepts any origin unless AllowedOrigins is set.
func (c WebSocket) Upgrader() *websocket.Upgrader {
	allowed := c.AllowedOrigins
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			return slices.Contains(allowed, r.Header.Get("Origin"))
		},
	}
}
