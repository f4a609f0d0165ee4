package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DebugEnv handles GET /api/debug-env. It reports which integrations are
// configured as booleans only; secret values are never echoed.
func (h *Handler) DebugEnv(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"database_configured":   h.cfg.Database.DSN != "",
		"jwt_configured":        h.cfg.Auth.JWTSecret != "",
		"openrouter_configured": h.cfg.AI.APIKey != "",
		"ollama_configured":     h.cfg.AI.OllamaURL != "",
		"opencage_configured":   h.cfg.Geocoding.APIKey != "",
		"vapid_configured":      h.cfg.Push.PublicKey != "" && h.cfg.Push.PrivateKey != "",
		"garage_api_configured": h.cfg.Server.GarageAPIKey != "",
	})
}
