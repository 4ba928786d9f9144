package routes

import (
	"net/http"

	"publishing-ops-api/controllers"
	"publishing-ops-api/middleware"
	"publishing-ops-api/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, h *controllers.Handlers, authn *middleware.Authenticator, cronSecret string) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})
			public.GET("/auth/login", h.Login)
			public.GET("/auth/callback", h.Callback)
			public.POST("/auth/logout", authn.OptionalAuth(), h.Logout)
		}

		// Scheduler endpoints, guarded by the shared cron secret
		cron := v1.Group("/cron")
		cron.Use(middleware.CronSecret(cronSecret))
		{
			cron.POST("/digest", h.RunCronJob(services.JobDigest))
			cron.POST("/deadlines", h.RunCronJob(services.JobDeadlines))
			cron.POST("/sla-reminders", h.RunCronJob(services.JobSLAReminders))
			cron.POST("/directory-sync", h.RunCronJob(services.JobDirectorySync))
		}

		// Protected routes (require a session)
		protected := v1.Group("")
		protected.Use(authn.RequireAuth())
		{
			protected.GET("/me", h.Me)

			workItems := protected.Group("/work-items")
			{
				workItems.GET("", h.ListWorkItems)
				workItems.POST("", h.CreateWorkItem)
				workItems.PUT("/order", h.ReorderWorkItems)
				workItems.GET("/:id", h.GetWorkItem)
				workItems.PATCH("/:id", h.UpdateWorkItem)
				workItems.DELETE("/:id", h.DeleteWorkItem)
				workItems.POST("/:id/complete", h.CompleteWorkItem)
				workItems.POST("/:id/reopen", h.ReopenWorkItem)
				workItems.GET("/:id/subtasks", h.ListSubtasks)
				workItems.POST("/:id/subtasks", h.CreateSubtask)
			}

			subtasks := protected.Group("/subtasks")
			{
				subtasks.PATCH("/:id", h.UpdateSubtask)
				subtasks.DELETE("/:id", h.DeleteSubtask)
				subtasks.POST("/:id/toggle", h.ToggleSubtask)
			}

			magazine := protected.Group("/magazine")
			{
				magazine.GET("/issues", h.ListIssues)
				magazine.POST("/issues", h.CreateIssue)
				magazine.GET("/issues/:id", h.GetIssue)
				magazine.PATCH("/issues/:id", h.UpdateIssue)
				magazine.DELETE("/issues/:id", h.DeleteIssue)
				magazine.GET("/issues/:id/items", h.ListMagazineItems)
				magazine.POST("/issues/:id/items", h.CreateMagazineItem)
				magazine.PUT("/issues/:id/items/order", h.ReorderMagazineItems)
				magazine.PATCH("/items/:id", h.UpdateMagazineItem)
				magazine.DELETE("/items/:id", h.DeleteMagazineItem)
			}

			protected.GET("/authors", h.ListAuthors)
			protected.GET("/authors/:id", h.GetAuthor)

			// Admin only
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.ListUsers)
				admin.POST("/users", h.CreateUser)
				admin.PATCH("/users/:id", h.UpdateUser)

				admin.GET("/recurring-deadlines", h.ListRecurringDeadlines)
				admin.POST("/recurring-deadlines", h.CreateRecurringDeadline)
				admin.GET("/recurring-deadlines/:id", h.GetRecurringDeadline)
				admin.PATCH("/recurring-deadlines/:id", h.UpdateRecurringDeadline)
				admin.DELETE("/recurring-deadlines/:id", h.DeleteRecurringDeadline)

				admin.GET("/health", h.AdminHealth)
				admin.GET("/job-runs", h.ListJobRuns)
				admin.GET("/sync-runs", h.ListSyncRuns)
				admin.GET("/audit", h.ListAudit)
				admin.POST("/authors/sync", h.SyncAuthors)
			}
		}
	}
}
