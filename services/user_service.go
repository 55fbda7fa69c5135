package services

import (
	"context"
	"strings"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/repository"
)

type CreateProfileInput struct {
	UID                string `json:"-"`
	FullName           string `json:"fullName" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	Age                int    `json:"age" binding:"gt=0"`
	City               string `json:"city" binding:"required"`
	State              string `json:"state" binding:"required"`
	Country            string `json:"country" binding:"required"`
	ProfilePicture     string `json:"profilePicture"`
	SustainabilityGoal string `json:"sustainabilityGoal"`
	ShortBio           string `json:"shortBio"`
	ConsentForDataUse  *bool  `json:"consentForDataUse" binding:"required"`
}

type Profile struct {
	User          *models.User         `json:"user"`
	ActivityLogs  []models.ActivityLog `json:"activityLogs"`
	TotalPoints   int                  `json:"totalPoints"`
	ActivityCount int64                `json:"activityCount"`
}

type UserService struct {
	users  *repository.UserRepository
	logs   *repository.ActivityRepository
	points *PointsService
	log    *logger.Logger
}

func NewUserService(users *repository.UserRepository, logs *repository.ActivityRepository, points *PointsService, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.Nop()
	}
	return &UserService{users: users, logs: logs, points: points, log: log.With("service", "UserService")}
}

func (s *UserService) CreateProfile(ctx context.Context, in CreateProfileInput) (*models.User, error) {
	if strings.TrimSpace(in.UID) == "" {
		return nil, apperr.Unauthorized("missing user identity")
	}
	for _, f := range []*string{&in.FullName, &in.Email, &in.City, &in.State, &in.Country, &in.ProfilePicture, &in.SustainabilityGoal, &in.ShortBio} {
		*f = strings.TrimSpace(*f)
	}
	in.Email = strings.ToLower(in.Email)
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	u := &models.User{
		UID:                in.UID,
		FullName:           in.FullName,
		Email:              in.Email,
		Age:                in.Age,
		City:               in.City,
		State:              in.State,
		Country:            in.Country,
		ProfilePicture:     in.ProfilePicture,
		SustainabilityGoal: in.SustainabilityGoal,
		ShortBio:           in.ShortBio,
		ConsentForDataUse:  *in.ConsentForDataUse,
	}

	exists, err := s.users.EmailExists(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.users.UIDExists(ctx, u.UID)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, apperr.Validation("user already exists")
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("profile created", "uid", u.UID)
	return u, nil
}

// GetProfile returns the user with their logs (newest first) and derived totals.
func (s *UserService) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	u, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByOwner(ctx, uid)
	if err != nil {
		return nil, err
	}
	total, err := s.points.TotalPoints(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, ActivityLogs: logs, TotalPoints: total, ActivityCount: int64(len(logs))}, nil
}

func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, apperr.Validation("email is required")
	}
	return s.users.EmailExists(ctx, email)
}

// UserLogs lists a user's records for the admin console.
func (s *UserService) UserLogs(ctx context.Context, uid string) ([]models.ActivityLog, error) {
	return s.logs.ListByOwner(ctx, uid)
}
