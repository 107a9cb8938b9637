// Package api 提供引擎的HTTP API。
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/LENAX/dag-engine/pkg/api/handler"
	"github.com/LENAX/dag-engine/pkg/api/middleware"
	"github.com/LENAX/dag-engine/pkg/core/engine"
)

// SetupRouter 设置路由（对外导出）
func SetupRouter(eng *engine.Engine, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	workflowHandler := handler.NewWorkflowHandler(eng)
	runHandler := handler.NewRunHandler(eng.RunRepository())
	eventHandler := handler.NewEventHandler(eng.Bus())
	healthHandler := handler.NewHealthHandler(version)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		workflows := v1.Group("/workflows")
		{
			workflows.GET("", workflowHandler.List)
			workflows.POST("", workflowHandler.Upload)
			workflows.GET("/:id", workflowHandler.Get)
			workflows.POST("/:id/execute", workflowHandler.Execute)
			workflows.GET("/:id/history", runHandler.History)
		}

		runs := v1.Group("/runs")
		{
			runs.GET("", runHandler.List)
			runs.GET("/:id", runHandler.Get)
		}

		v1.GET("/events/ws", eventHandler.Stream)
	}

	return router
}
