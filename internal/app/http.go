package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthyback-backend/internal/http"
	httpH "github.com/yungbote/healthyback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/healthyback-backend/internal/http/middleware"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Auth   *httpH.AuthHandler
	Data   *httpH.DataHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Auth:   httpH.NewAuthHandler(services.Auth),
		Data:   httpH.NewDataHandler(services.Sync),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		HealthHandler:  handlers.Health,
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		DataHandler:    handlers.Data,
	})
}
