package controllers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/config"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/middleware"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/services"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/utils"
)

type AdminController struct {
	Reviews      *services.ReviewService
	Users        *services.UserService
	Points       *services.PointsService
	username     string
	passwordHash []byte
	secret       string
	ttl          time.Duration
	secureCookie bool
	log          *logger.Logger
}

// NewAdminController hashes a plaintext ADMIN_PASSWORD once so every login goes through bcrypt.
func NewAdminController(reviews *services.ReviewService, users *services.UserService, points *services.PointsService, cfg *config.AppConfig, log *logger.Logger) (*AdminController, error) {
	if log == nil {
		log = logger.Nop()
	}
	hash := []byte(cfg.Admin.PasswordHash)
	if len(hash) == 0 {
		if cfg.Admin.Password == "" {
			return nil, errors.New("admin password is not configured")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return &AdminController{
		Reviews:      reviews,
		Users:        users,
		Points:       points,
		username:     cfg.Admin.Username,
		passwordHash: hash,
		secret:       cfg.JWTSecret,
		ttl:          cfg.Admin.SessionTTL,
		secureCookie: cfg.IsProduction(),
		log:          log.With("controller", "AdminController"),
	}, nil
}

func (ac *AdminController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(ac.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(ac.passwordHash, []byte(input.Password))
	if !userOK || passErr != nil {
		ac.log.Warn("admin login failed", "username", input.Username, "client_ip", c.ClientIP())
		respondError(c, apperr.Unauthorized("Invalid credentials"))
		return
	}

	token, expiresAt, err := utils.GenerateToken(ac.secret, ac.username, utils.RoleAdmin, ac.ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminSessionCookie, token, int(ac.ttl.Seconds()), "/", "", ac.secureCookie, true)
	ac.log.Info("admin logged in", "username", ac.username)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Logged in as admin",
		"token_type": "Bearer",
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (ac *AdminController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminSessionCookie, "", -1, "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (ac *AdminController) CheckAuth(c *gin.Context) {
	if _, ok := middleware.AdminClaims(c, ac.secret); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "isAuthenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isAuthenticated": true})
}

// PendingCount counts records awaiting an automated or manual decision.
func (ac *AdminController) PendingCount(c *gin.Context) {
	count, err := ac.Reviews.CountPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (ac *AdminController) PendingLogs(c *gin.Context) {
	logs, err := ac.Reviews.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}

func (ac *AdminController) VerifyLog(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	rec, err := ac.Reviews.SetStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Log %s successfully", rec.Status),
		"log":     rec,
	})
}

func (ac *AdminController) EditPoints(c *gin.Context) {
	var input struct {
		Points *int `json:"points"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if input.Points == nil {
		respondError(c, apperr.Validation("points is required"))
		return
	}

	rec, err := ac.Reviews.EditPoints(c.Request.Context(), c.Param("id"), *input.Points)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Points updated successfully", "log": rec})
}

func (ac *AdminController) DeleteLog(c *gin.Context) {
	if err := ac.Reviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Activity deleted successfully"})
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.Points.ListUsersWithTotals(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (ac *AdminController) UsersCount(c *gin.Context) {
	count, err := ac.Points.CountUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// UserLogs lists every record of the user whose uid is :id.
func (ac *AdminController) UserLogs(c *gin.Context) {
	logs, err := ac.Users.UserLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}
