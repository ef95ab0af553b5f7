package api

import (
	"net/http"

	"alcyxob/coach-assistant/internal/domain"
	"alcyxob/coach-assistant/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	assistantService service.AssistantService,
	contentService service.ContentService,
) {
	chatHandler := NewChatHandler(assistantService)
	planHandler := NewPlanHandler(assistantService)
	contentHandler := NewContentHandler(contentService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Chat (clients only) ---
		chatGroup := protected.Group("/chat")
		chatGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			// POST /api/v1/chat/turn
			chatGroup.POST("/turn", chatHandler.HandleTurn)
		}

		// --- Plan reads (clients only) ---
		planGroup := protected.Group("/plans")
		planGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			// GET /api/v1/plans/diet
			planGroup.GET("/diet", planHandler.GetActiveDiet)
			// GET /api/v1/plans/diet/categories
			planGroup.GET("/diet/categories", planHandler.GetFoodCategories)
			// GET /api/v1/plans/workout
			planGroup.GET("/workout", planHandler.GetActiveWorkout)
			// GET /api/v1/plans/meals?from=...&to=...
			planGroup.GET("/meals", planHandler.GetMealPlans)
		}

		// --- Trainer content library ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// POST /api/v1/trainer/content/upload-url
			trainerGroup.POST("/content/upload-url", contentHandler.GenerateUploadURL)
			// POST /api/v1/trainer/content
			trainerGroup.POST("/content", contentHandler.IngestContent)
			// GET /api/v1/trainer/content
			trainerGroup.GET("/content", contentHandler.ListContent)
			// DELETE /api/v1/trainer/content/{contentId}
			trainerGroup.DELETE("/content/:contentId", contentHandler.DeleteContent)
			// GET /api/v1/trainer/content/{contentId}/download-url
			trainerGroup.GET("/content/:contentId/download-url", contentHandler.GetDownloadURL)
		}
	}
}
