package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
)

func SetupAdminRoutes(api *gin.RouterGroup, adminController *controllers.AdminController, requireAdmin gin.HandlerFunc) {
	admin := api.Group("/admin")
	{
		// Session
		admin.POST("/login", adminController.Login)
		admin.POST("/logout", adminController.Logout)
		admin.GET("/check-auth", adminController.CheckAuth)
	}

	protected := admin.Group("")
	protected.Use(requireAdmin)
	{
		// Review queue
		protected.GET("/logs/pending", adminController.PendingCount)
		protected.GET("/logs/pending-logs", adminController.PendingLogs)
		protected.PATCH("/logs/:id/verify", adminController.VerifyLog)
		protected.PATCH("/logs/:id/edit-points", adminController.EditPoints)
		protected.DELETE("/logs/:id", adminController.DeleteLog)

		// Users
		protected.GET("/users", adminController.ListUsers)
		protected.GET("/users/count", adminController.UsersCount)
		protected.GET("/users/:id/logs", adminController.UserLogs)
	}
}
