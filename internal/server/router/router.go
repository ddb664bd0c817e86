package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.ViewerHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.SetHTMLTemplate(handlers.PageTemplate())

	r.GET("/", handler.Page)
	r.POST("/archive", handler.UploadForm)
	r.GET("/photos/:gen/:id", handler.Photo)
	r.GET("/export.xlsx", handler.ExportXLSX)

	api := r.Group("/api")
	api.POST("/archive", handler.UploadAPI)
	api.GET("/views/:tab", handler.View)
	api.GET("/filter", handler.Filter)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
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
			zap.String("client_ip", c.ClientIP()))
	}
}
