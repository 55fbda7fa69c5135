package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController, leaderboardController *controllers.LeaderboardController) {
	users := protected.Group("/users")
	{
		users.POST("/create-profile", userController.CreateProfile)
		users.GET("/get-user-profile", userController.GetUserProfile)
		users.GET("/leaderboard", leaderboardController.GetLeaderboard)
	}
}
