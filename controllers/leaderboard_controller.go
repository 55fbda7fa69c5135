package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/services"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

type LeaderboardController struct {
	Points *services.PointsService
}

type LeaderboardQuery struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

func NewLeaderboardController(points *services.PointsService) *LeaderboardController {
	return &LeaderboardController{Points: points}
}

// GetLeaderboard ranks users by approved points and reports the caller's own row when ranked.
func (lc *LeaderboardController) GetLeaderboard(c *gin.Context) {
	var query LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	rows, err := lc.Points.Leaderboard(c.Request.Context(), query.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"success": true, "leaderboard": rows}
	if user := utils.GetUser(c); user != nil {
		for _, row := range rows {
			if row.UID == user.UserID {
				response["user_rank"] = row
				break
			}
		}
	}
	c.JSON(http.StatusOK, response)
}
