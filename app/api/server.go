package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

func NewServer(handler *Handler) *gin.Engine {
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
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	r.GET("/releases", handler.GetReleases)
	r.GET("/releases/latest", handler.GetLatestRelease)
	r.GET("/feed.xml", handler.GetFeed)
	r.POST("/refresh", handler.PostRefresh)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "cros-releases",
			"version":     handler.version,
			"description": "ChromeOS release announcements from the Chrome Releases blog",
			"endpoints": map[string]string{
				"health":  "/health",
				"list":    "/releases?since=<RFC3339>&limit=<n>",
				"latest":  "/releases/latest",
				"feed":    "/feed.xml",
				"refresh": "/refresh (POST)",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
