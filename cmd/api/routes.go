package main

import (
	"net/http"

	"million-ears/internal/httpapi"
	"million-ears/internal/vapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, webhook vapi.WebhookHandler, webhookSecret string, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhook (public). When VAPI_WEBHOOK_SECRET is set the provider
	// is configured to echo it in x-vapi-secret and we reject anything else.
	r.POST("/webhook/vapi", requireWebhookSecret(webhookSecret), webhook.Handle)

	// AUTH routes (token issuance, public).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	authGroup := r.Group("/v1/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// CALLS routes
		callsGroup := v1.Group("/calls")
		{
			callsGroup.POST("", h.InitiateCall)
			callsGroup.GET("", h.ListCalls)
			callsGroup.GET("/summary", h.CallsSummary)
		}

		// MEMORIES routes
		memoriesGroup := v1.Group("/memories")
		{
			memoriesGroup.POST("", h.CreateMemory)
			memoriesGroup.GET("", h.ListMemories)
			memoriesGroup.PATCH("/:id", h.UpdateMemory)
		}

		// CHAT routes
		chatGroup := v1.Group("/chat/threads")
		{
			chatGroup.POST("", h.CreateThread)
			chatGroup.GET("", h.ListThreads)
			chatGroup.GET("/:id", h.GetThread)
			chatGroup.GET("/:id/messages", h.ListMessages)
			chatGroup.POST("/:id/messages", h.SendMessage)
		}
	}
}

func requireWebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" && c.GetHeader("x-vapi-secret") != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		c.Next()
	}
}
