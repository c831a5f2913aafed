package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docask/docask/internal/middleware"
)

type RouterDeps struct {
	Auth            *AuthHandler
	RAG             *RAGHandler
	Documents       *DocumentHandler
	JWTSecret       []byte
	QueryRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", health)

	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/rag/upload", deps.RAG.Upload)
	authGroup.POST("/rag/query", middleware.RateLimit(deps.QueryRateWindow), deps.RAG.Query)
	authGroup.GET("/rag/stats", deps.RAG.Stats)
	authGroup.DELETE("/rag/documents/:id", deps.RAG.Delete)

	authGroup.GET("/documents", deps.Documents.List)
}

func health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
