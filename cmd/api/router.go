package api

import (
	"net/http"

	activityDelivery "replydesk/internal/activity/delivery"
	"replydesk/internal/auth/delivery"
	authUsecase "replydesk/internal/auth/usecase"
	replyDelivery "replydesk/internal/reply/delivery"
	templateDelivery "replydesk/internal/template/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, inboxHandler *replyDelivery.InboxHandler, templateHandler *templateDelivery.TemplateHandler, activityHandler *activityDelivery.ActivityHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// Inbox routes (protected)
		inbox := api.Group("/inbox")
		inbox.Use(delivery.AuthMiddleware(authUsecase))
		{
			inbox.GET("", inboxHandler.Index)
			inbox.GET("/:id", inboxHandler.Show)
			inbox.POST("/:id/generate-reply", inboxHandler.GenerateReply)
			inbox.POST("/:id/send-reply", inboxHandler.SendReply)
		}

		// Quick reply template routes (protected)
		templates := api.Group("/settings/quick-reply-templates")
		templates.Use(delivery.AuthMiddleware(authUsecase))
		{
			templates.GET("", templateHandler.Index)
			templates.POST("", templateHandler.Store)
			templates.PUT("/:id", templateHandler.Update)
			templates.DELETE("/:id", templateHandler.Destroy)
			templates.POST("/create-defaults", templateHandler.CreateDefaults)
		}

		// Settings routes (public) - Runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ai", GetAISettings)
			settings.PUT("/ai", UpdateAISettings)
		}

		// Send activity routes (protected)
		activity := api.Group("/email-activity")
		activity.Use(delivery.AuthMiddleware(authUsecase))
		{
			activity.GET("", activityHandler.Index)
			activity.GET("/recent", activityHandler.Recent)
		}
	}
}
