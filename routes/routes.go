package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/controllers"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/middleware"
)

// Controllers groups the handlers mounted by SetupRoutes. Upload and Chat are optional.
type Controllers struct {
	Activity    *controllers.ActivityController
	Admin       *controllers.AdminController
	User        *controllers.UserController
	Leaderboard *controllers.LeaderboardController
	Validation  *controllers.ValidationController
	Upload      *controllers.UploadController
	Chat        *controllers.ChatController
}

// NewRouter builds the engine with recovery, request logging and CORS ahead of every route.
func NewRouter(log *logger.Logger, corsOrigins []string, jwtSecret string, c Controllers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(corsOrigins))
	SetupRoutes(r, jwtSecret, c)
	return r
}

func SetupRoutes(r *gin.Engine, jwtSecret string, c Controllers) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/activity/categories", c.Activity.GetCategories)
		SetupValidationRoutes(public, c.Validation)
		if c.Chat != nil {
			SetupChatRoutes(public, c.Chat)
		}
	}

	SetupAdminRoutes(public, c.Admin, middleware.AdminAuthMiddleware(jwtSecret))

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		SetupActivityRoutes(protected, c.Activity)
		SetupUserRoutes(protected, c.User, c.Leaderboard)
		if c.Upload != nil {
			SetupUploadRoutes(protected, c.Upload)
		}
	}
}
