package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wayfarerhq/wayfarer/internal/http/handler"
	"github.com/wayfarerhq/wayfarer/internal/service"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

type RouterConfig struct {
	ServiceVersion string
}

func SetupRoutes(router *gin.Engine, services *service.Services, stores *store.Stores, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(stores, cfg.ServiceVersion)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Check)

	jobHandler := handler.NewJobHandler(services.Jobs())
	JobRouter(&router.RouterGroup, jobHandler)
}
