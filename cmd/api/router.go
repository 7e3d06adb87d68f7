package api

import (
	"net/http"

	"kanban-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	auth := delivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// WebSocket: ?board_id= joins a board room, user messages always arrive
		api.GET("/ws", auth, h.realtimeHandler.Connect)

		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", h.authHandler.Login)
			authRoutes.POST("/register", h.authHandler.Register)
			authRoutes.GET("/google", h.authHandler.GoogleRedirect)
			authRoutes.GET("/google/callback", h.authHandler.GoogleCallback)
			authRoutes.POST("/google", h.authHandler.GoogleSignIn)
			authRoutes.POST("/refresh", h.authHandler.RefreshToken)
			authRoutes.POST("/logout", h.authHandler.Logout)
			authRoutes.GET("/me", auth, h.authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(auth)

		// Profile and device tokens
		protected.PUT("/profile", h.authHandler.UpdateProfile)
		protected.POST("/devices", h.authHandler.RegisterDeviceToken)
		protected.DELETE("/devices/:token", h.authHandler.UnregisterDeviceToken)

		// Boards, columns, labels
		protected.GET("/boards", h.boardHandler.ListBoards)
		protected.POST("/boards", h.boardHandler.CreateBoard)
		protected.GET("/board-templates", h.boardHandler.ListTemplates)
		protected.GET("/boards/:id", h.boardHandler.GetBoard)
		protected.PUT("/boards/:id", h.boardHandler.UpdateBoard)
		protected.DELETE("/boards/:id", h.boardHandler.DeleteBoard)
		protected.POST("/boards/:id/columns", h.boardHandler.CreateColumn)
		protected.PUT("/boards/:id/columns/orders", h.boardHandler.ReorderColumns)
		protected.PUT("/columns/:id", h.boardHandler.UpdateColumn)
		protected.DELETE("/columns/:id", h.boardHandler.DeleteColumn)
		protected.GET("/boards/:id/labels", h.boardHandler.ListLabels)
		protected.POST("/boards/:id/labels", h.boardHandler.CreateLabel)
		protected.PUT("/labels/:id", h.boardHandler.UpdateLabel)
		protected.DELETE("/labels/:id", h.boardHandler.DeleteLabel)

		// Tasks
		protected.GET("/boards/:id/tasks", h.taskHandler.ListBoardTasks)
		protected.POST("/tasks", h.taskHandler.CreateTask)
		protected.GET("/tasks/starred", h.taskHandler.ListStarred)
		protected.GET("/tasks/search", h.taskHandler.Search)
		protected.GET("/tasks/:id", h.taskHandler.GetTask)
		protected.PUT("/tasks/:id", h.taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", h.taskHandler.DeleteTask)
		protected.PATCH("/tasks/:id/move", h.taskHandler.MoveTask)
		protected.POST("/tasks/:id/star", h.taskHandler.ToggleStar)
		protected.POST("/subtasks/:id/toggle", h.taskHandler.ToggleSubtask)

		// Projects and team
		protected.GET("/projects", h.teamHandler.ListProjects)
		protected.POST("/projects", h.teamHandler.CreateProject)
		protected.GET("/projects/:id", h.teamHandler.GetProject)
		protected.PUT("/projects/:id", h.teamHandler.UpdateProject)
		protected.DELETE("/projects/:id", h.teamHandler.DeleteProject)
		protected.GET("/projects/:id/members", h.teamHandler.ListMembers)
		protected.PATCH("/projects/:id/members/:userId", h.teamHandler.UpdateMemberRole)
		protected.DELETE("/projects/:id/members/:userId", h.teamHandler.RemoveMember)
		protected.GET("/projects/:id/invitations", h.teamHandler.ListInvitations)
		protected.POST("/projects/:id/invitations", h.teamHandler.Invite)
		protected.DELETE("/invitations/:id", h.teamHandler.RevokeInvitation)
		protected.GET("/invitations/accept", h.teamHandler.AcceptInvitation)
		protected.POST("/invitations/accept", h.teamHandler.AcceptInvitation)
		protected.POST("/invitations/decline", h.teamHandler.DeclineInvitation)
		protected.GET("/team", h.teamHandler.ListTeam)

		// Automations
		protected.GET("/boards/:id/automations", h.automationHandler.List)
		protected.POST("/boards/:id/automations", h.automationHandler.Create)
		protected.PUT("/automations/:id", h.automationHandler.Update)
		protected.PATCH("/automations/:id/active", h.automationHandler.SetActive)
		protected.DELETE("/automations/:id", h.automationHandler.Delete)

		// Custom fields
		protected.GET("/boards/:id/custom-fields", h.customFieldHandler.List)
		protected.POST("/boards/:id/custom-fields", h.customFieldHandler.Create)
		protected.PUT("/custom-fields/:id", h.customFieldHandler.Update)
		protected.DELETE("/custom-fields/:id", h.customFieldHandler.Delete)

		// Notifications
		protected.GET("/notifications", h.notificationHandler.List)
		protected.GET("/notifications/unread-count", h.notificationHandler.UnreadCount)
		protected.PATCH("/notifications/:id/read", h.notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", h.notificationHandler.MarkAllRead)

		// Preferences
		protected.GET("/preferences", h.preferenceHandler.All)
		protected.GET("/preferences/:key", h.preferenceHandler.Get)
		protected.PUT("/preferences/:key", h.preferenceHandler.Put)
		protected.DELETE("/preferences/:key", h.preferenceHandler.Delete)

		// Dashboard, calendar, reports
		protected.GET("/dashboard", h.dashboardHandler.Dashboard)
		protected.GET("/calendar", h.dashboardHandler.Calendar)
		protected.GET("/boards/:id/report", h.dashboardHandler.Report)
	}
}
