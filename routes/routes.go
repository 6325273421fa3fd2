package routes

import (
	"net/http"

	"job-board-api/auth"
	"job-board-api/controllers"
	"job-board-api/middleware"
	"job-board-api/models"
	"job-board-api/realtime"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the collaborators the HTTP layer is built from.
type Deps struct {
	Tokens        *auth.TokenManager
	Users         *services.UserService
	Jobs          *services.JobService
	Applications  *services.ApplicationService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Hub           *realtime.Hub
}

func SetupRoutes(router *gin.Engine, d Deps) {
	controllers.UseJSONFieldNames()

	authCtl := controllers.NewAuthController(d.Users)
	jobCtl := controllers.NewJobController(d.Jobs)
	appCtl := controllers.NewApplicationController(d.Applications, d.Messages)
	notifCtl := controllers.NewNotificationController(d.Notifications, d.Hub)

	requireAuth := middleware.AuthMiddleware(d.Tokens, d.Users.IdentityByID, false)
	posterOnly := middleware.RequireRole(models.RoleJobPoster)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/auth/register", authCtl.Register)
			public.POST("/auth/login", authCtl.Login)

			public.GET("/jobs", jobCtl.ListJobs)
			public.GET("/jobs/:id", jobCtl.GetJob)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"status":  "ok",
					"message": "Job Board API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(requireAuth)
		{
			// User profile
			protected.GET("/profile", authCtl.GetProfile)
			protected.PUT("/profile", authCtl.UpdateProfile)

			// Job management, posters only
			protected.POST("/jobs", posterOnly, jobCtl.CreateJob)
			protected.GET("/jobs/mine", posterOnly, jobCtl.MyJobs)
			protected.DELETE("/jobs/:id", posterOnly, jobCtl.DeleteJob)

			// Applications and messaging; role checks live in the services
			applications := protected.Group("/applications")
			{
				applications.POST("/apply", appCtl.Apply)
				applications.GET("/my-applications", appCtl.MyApplications)
				applications.GET("/job/:jobId", appCtl.JobApplications)
				applications.GET("/my-job-applications", appCtl.MyJobApplications)
				applications.PUT("/:id/status", appCtl.UpdateStatus)
				applications.POST("/:id/message", appCtl.SendMessage)
				applications.GET("/:id/messages", appCtl.Messages)
				applications.GET("/message/:messageId", appCtl.GetMessage)
				applications.DELETE("/:id", appCtl.Withdraw)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notifCtl.GetNotifications)
				notifications.GET("/unread-count", notifCtl.GetUnreadCount)
				notifications.PUT("/mark-all-read", notifCtl.MarkAllRead)
				notifications.PUT("/:id/read", notifCtl.MarkRead)
				notifications.DELETE("/:id", notifCtl.Delete)
			}
		}

		// Websocket upgrades may carry the token as ?token=
		v1.GET("/ws/notifications",
			middleware.AuthMiddleware(d.Tokens, d.Users.IdentityByID, true),
			notifCtl.Stream,
		)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
