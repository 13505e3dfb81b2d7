package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/healthyback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/healthyback-backend/internal/http/middleware"
)

type RouterConfig struct {
	HealthHandler  *httpH.HealthHandler
	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	DataHandler    *httpH.DataHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.HealthCheck)
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := r.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	// Data (protected)
	if cfg.DataHandler != nil {
		data := r.Group("/data")
		if cfg.AuthMiddleware != nil {
			data.Use(cfg.AuthMiddleware.RequireAuth())
		}
		data.GET("/sync", cfg.DataHandler.Sync)
		data.POST("/:type", cfg.DataHandler.Save)
	}

	return r
}
