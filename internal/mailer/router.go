package mailer

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter serves the send-email endpoint and a health check.
func NewRouter(handler *Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.POST("/send-email", handler.SendEmail)

	return engine
}
