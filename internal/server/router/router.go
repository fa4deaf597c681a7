package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/logistics/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.DashboardHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.SetHTMLTemplate(handlers.Templates())

	r.GET("/", handler.Index)
	r.POST("/params", handler.SubmitParams)
	r.POST("/records", handler.SubmitRecord)
	r.POST("/records/:product/delete", handler.SubmitDelete)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/inventory", handler.GetInventory)
		api.POST("/inventory", handler.CreateRecord)
		api.PUT("/inventory", handler.ReplaceInventory)
		api.PUT("/inventory/:product", handler.UpdateRecord)
		api.DELETE("/inventory/:product", handler.DeleteRecord)

		api.GET("/params", handler.GetParams)
		api.PUT("/params", handler.UpdateParams)
		api.POST("/refresh", handler.Refresh)

		api.GET("/best", handler.GetBest)
		api.GET("/chart", handler.GetChart)
		api.GET("/export.csv", handler.ExportCSV)
		api.GET("/export.xlsx", handler.ExportXLSX)

		api.GET("/snapshots/latest", handler.LatestSnapshot)
		api.POST("/snapshots", handler.CreateSnapshot)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
