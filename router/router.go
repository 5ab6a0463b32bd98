package router

import (
	"SwipeVault/internal/handler"
	"SwipeVault/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", handler.Register)
		api.GET("/activate", handler.Activate)
		api.POST("/login", handler.Login)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())

		research := auth.Group("/research-items")
		{
			research.POST("", handler.CreateResearchItem)
			research.GET("", handler.ListResearchItems)
			research.GET("/:id", handler.GetResearchItem)
			research.DELETE("/:id", handler.DeleteResearchItem)
			research.GET("/:id/file-url", handler.ResearchFileURL)
		}

		swipes := auth.Group("/swipes")
		{
			swipes.POST("", handler.CreateSwipe)
			swipes.GET("", handler.ListSwipes)
			swipes.GET("/:id", handler.GetSwipe)
			swipes.GET("/:id/image-url", handler.SwipeImageURL)
		}

		copyGroup := auth.Group("/copy")
		{
			copyGroup.POST("/generate", handler.GenerateCopy)
			copyGroup.POST("/edit", handler.EditCopy)
		}

		auth.GET("/jobs", handler.ListMediaJobs)
	}
	return r
}
