package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP router with all routes configured. When
// apiAccessKey is set, mutating endpoints require it; read endpoints stay
// open either way.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/", handler.GetRoot)
	r.GET("/health", handler.GetHealth)

	r.GET("/news", handler.ListNews)
	r.GET("/news/recommended", handler.GetRecommended)
	r.GET("/news/:id", handler.GetNewsByID)

	r.GET("/newsletter", handler.GetNewsletter)
	r.GET("/newsletter/preview", handler.GetNewsletterPreview)

	r.GET("/analytics/sectors", handler.GetSectorAnalytics)
	r.GET("/analytics/scores", handler.GetScoreAnalytics)
	r.GET("/analytics/tags", handler.GetTagAnalytics)

	r.GET("/sync/status", handler.GetSyncStatus)

	mutating := r.Group("/")
	if apiAccessKey != "" {
		mutating.Use(authMiddleware(apiAccessKey))
		slog.Info("Mutating endpoints enabled with authentication")
	} else {
		slog.Info("Mutating endpoints enabled without authentication (API_ACCESS_KEY not set)")
	}
	{
		mutating.POST("/news/select/:id", handler.SelectNews)
		mutating.POST("/news/select", handler.SelectMultipleNews)
		mutating.DELETE("/news/select/:id", handler.DeselectNews)
		mutating.DELETE("/news/select", handler.ClearSelections)
		mutating.POST("/sync", handler.TriggerSync)
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
